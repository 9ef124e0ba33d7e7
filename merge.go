package opts

import "sort"

// Merge builds a new store from stores applied left to right, so later stores
// win on key conflicts. Each input contributes its entries and then its
// aliases. The key policy and configuration come from the last non-nil store;
// nil inputs are skipped and an empty call yields an empty case-insensitive
// store.
func Merge(stores ...*Store) *Store {
	var last *Store
	for i := len(stores) - 1; i >= 0; i-- {
		if stores[i] != nil {
			last = stores[i]
			break
		}
	}
	if last == nil {
		return New()
	}

	merged := newStore(last.caseInsensitive, last.cfg.clone())
	for _, store := range stores {
		if store == nil {
			continue
		}
		merged.copyEntries(store)
		merged.copyAliases(store)
	}
	return merged
}

// AddRange copies every entry of source into s, overwriting on conflict.
// Aliases are not copied.
func (s *Store) AddRange(source *Store) *Store {
	if s == nil || source == nil {
		return s
	}
	for _, e := range source.Entries() {
		s.SetRaw(e.Key, e.Value)
	}
	return s
}

// AddMap copies values into s, overwriting on conflict. Keys are applied in
// sorted order so that keys folding together resolve deterministically.
func (s *Store) AddMap(values map[string]string) *Store {
	if s == nil || len(values) == 0 {
		return s
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		s.SetString(key, values[key])
	}
	return s
}

// AddEntries writes entries into s in order, overwriting on conflict.
func (s *Store) AddEntries(entries []Entry) *Store {
	if s == nil {
		return s
	}
	for _, e := range entries {
		s.SetRaw(e.Key, e.Value)
	}
	return s
}

// FromEntries rebuilds a store from previously persisted entries, applied in
// order. Loading is not a write: activity hooks are not notified.
func FromEntries(entries []Entry, opts ...Option) *Store {
	s := New(opts...)
	for _, e := range entries {
		if e.Key == "" {
			continue
		}
		s.put(e.Key, e.Value)
	}
	return s
}
