package opts

import "github.com/tidwall/gjson"

// Snapshot returns every entry as a loosely typed value: JSON literals
// (numbers, booleans, arrays, objects, quoted strings) are decoded, other
// strings are kept verbatim and nulls become nil. Aliases whose target exists
// are included under the alias name unless an entry already uses it.
func (s *Store) Snapshot() map[string]any {
	return s.snapshot(literalValue)
}

// rawSnapshot is Snapshot without literal typing: values stay as stored.
func (s *Store) rawSnapshot() map[string]any {
	return s.snapshot(func(value *string) any {
		if value == nil {
			return nil
		}
		return *value
	})
}

func (s *Store) snapshot(convert func(*string) any) map[string]any {
	out := map[string]any{}
	if s == nil {
		return out
	}
	for _, norm := range s.order {
		e := s.entries[norm]
		out[e.key] = convert(e.value)
	}
	for _, norm := range s.aliasOrder {
		a := s.aliases[norm]
		if _, shadowed := s.entries[norm]; shadowed {
			continue
		}
		if e, ok := s.entries[s.normalize(a.target)]; ok {
			out[a.alias] = convert(e.value)
		}
	}
	return out
}

func literalValue(value *string) any {
	if value == nil {
		return nil
	}
	if gjson.Valid(*value) {
		return gjson.Parse(*value).Value()
	}
	return *value
}
