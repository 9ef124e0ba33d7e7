package opts

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Has reports whether key holds an entry. Aliases are not consulted.
func (s *Store) Has(key string) bool {
	if s == nil || key == "" {
		return false
	}
	_, ok := s.entries[s.normalize(key)]
	return ok
}

// SetRaw stores value under key verbatim. A nil value records an explicit
// null. An empty key is ignored.
func (s *Store) SetRaw(key string, value *string) *Store {
	if s == nil || key == "" {
		return s
	}
	old, existed := s.put(key, value)
	s.notifySet(key, old, value, existed)
	return s
}

// SetString stores value under key verbatim.
func (s *Store) SetString(key, value string) *Store {
	return s.SetRaw(key, &value)
}

// Value returns the raw string stored under key, falling back to aliases.
// Absent keys and nulls both yield "".
func (s *Store) Value(key string) string {
	raw, ok := s.Raw(key)
	if !ok || raw == nil {
		return ""
	}
	return *raw
}

// Raw returns the stored payload for key. When key has no entry the alias
// table is consulted. ok is false when neither resolves; a resolved null is
// returned as (nil, true).
func (s *Store) Raw(key string) (*string, bool) {
	if s == nil || key == "" {
		return nil, false
	}
	norm := s.normalize(key)
	if e, ok := s.entries[norm]; ok {
		return cloneString(e.value), true
	}
	if a, ok := s.aliases[norm]; ok {
		if e, ok := s.entries[s.normalize(a.target)]; ok {
			return cloneString(e.value), true
		}
	}
	return nil, false
}

// Len returns the number of entries.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Keys returns entry keys in insertion order, spelled as first written.
func (s *Store) Keys() []string {
	if s == nil || len(s.order) == 0 {
		return nil
	}
	keys := make([]string, 0, len(s.order))
	for _, norm := range s.order {
		keys = append(keys, s.entries[norm].key)
	}
	return keys
}

// Entries returns a copy of all entries in insertion order.
func (s *Store) Entries() []Entry {
	if s == nil || len(s.order) == 0 {
		return nil
	}
	out := make([]Entry, 0, len(s.order))
	for _, norm := range s.order {
		e := s.entries[norm]
		out = append(out, Entry{Key: e.key, Value: cloneString(e.value)})
	}
	return out
}

func (s *Store) put(key string, value *string) (*string, bool) {
	norm := s.normalize(key)
	value = cloneString(value)
	if e, ok := s.entries[norm]; ok {
		old := e.value
		e.value = value
		return old, true
	}
	s.entries[norm] = &entry{key: key, value: value}
	s.order = append(s.order, norm)
	return nil, false
}

func (s *Store) copyEntries(source *Store) {
	for _, norm := range source.order {
		e := source.entries[norm]
		s.put(e.key, e.value)
	}
}

func (s *Store) normalize(key string) string {
	if !s.caseInsensitive {
		return key
	}
	return foldKey(key)
}

func foldKey(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] >= utf8.RuneSelf {
			return cases.Fold().String(key)
		}
	}
	return strings.ToLower(key)
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
