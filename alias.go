package opts

// SetAlias registers aliases as alternate lookup keys for key. Aliases are only
// consulted when a direct lookup misses, and a later registration of the same
// alias replaces the earlier target.
func (s *Store) SetAlias(key string, aliases ...string) *Store {
	if s == nil || key == "" {
		return s
	}
	for _, alias := range aliases {
		if alias == "" {
			continue
		}
		s.putAlias(alias, key)
		s.notifyAlias(key, alias)
	}
	return s
}

// Aliases returns a copy of the alias table keyed by alias.
func (s *Store) Aliases() map[string]string {
	if s == nil || len(s.aliasOrder) == 0 {
		return nil
	}
	out := make(map[string]string, len(s.aliasOrder))
	for _, norm := range s.aliasOrder {
		a := s.aliases[norm]
		out[a.alias] = a.target
	}
	return out
}

func (s *Store) putAlias(alias, target string) {
	norm := s.normalize(alias)
	if _, ok := s.aliases[norm]; !ok {
		s.aliasOrder = append(s.aliasOrder, norm)
	}
	s.aliases[norm] = aliasEntry{alias: alias, target: target}
}

func (s *Store) copyAliases(source *Store) {
	for _, norm := range source.aliasOrder {
		a := source.aliases[norm]
		s.putAlias(a.alias, a.target)
	}
}
