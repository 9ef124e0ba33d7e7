package opts

import "time"

// New constructs an empty Store. Keys are compared case-insensitively unless
// WithCaseInsensitive(false) is supplied.
func New(opts ...Option) *Store {
	cfg := applyOptions(opts)
	return newStore(!cfg.caseSensitive, cfg)
}

// CloneWithCasePolicy returns a new Store holding the entries and aliases of
// other, rebuilt under the requested key comparison policy. When the new
// policy folds keys that were distinct before, the later write wins. other is
// never mutated; a nil other yields an empty store.
func CloneWithCasePolicy(other *Store, caseInsensitive bool) *Store {
	if other == nil {
		return New(WithCaseInsensitive(caseInsensitive))
	}
	cfg := other.cfg.clone()
	cfg.caseSensitive = !caseInsensitive
	clone := newStore(caseInsensitive, cfg)
	clone.copyEntries(other)
	clone.copyAliases(other)
	clone.layers = cloneLayerSnapshots(other.layers)
	return clone
}

// Clone returns an independent copy of s using the same key policy.
func (s *Store) Clone() *Store {
	if s == nil {
		return nil
	}
	return CloneWithCasePolicy(s, s.caseInsensitive)
}

// CaseInsensitive reports the key comparison policy fixed at construction.
func (s *Store) CaseInsensitive() bool {
	return s != nil && s.caseInsensitive
}

// WithCaseInsensitive selects the key comparison policy. Stores are
// case-insensitive by default.
func WithCaseInsensitive(enabled bool) Option {
	return func(cfg *storeConfig) {
		cfg.caseSensitive = !enabled
	}
}

// WithLocation sets the location used for date values that carry no zone.
// Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(cfg *storeConfig) {
		cfg.location = loc
	}
}

// WithEvaluator configures the rule evaluator used by Evaluate.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *storeConfig) {
		cfg.evaluator = e
	}
}

func newStore(caseInsensitive bool, cfg storeConfig) *Store {
	return &Store{
		caseInsensitive: caseInsensitive,
		entries:         make(map[string]*entry),
		aliases:         make(map[string]aliasEntry),
		cfg:             cfg,
	}
}
