package opts

import (
	"time"

	"github.com/goliatone/go-optstore/pkg/activity"
)

// Store is a string-backed option store. Values are persisted as strings (or
// null) and decoded into the requested type on read.
//
// A Store performs no internal locking. Callers sharing a Store between
// goroutines must serialize access themselves.
type Store struct {
	caseInsensitive bool

	entries map[string]*entry
	order   []string

	aliases    map[string]aliasEntry
	aliasOrder []string

	layers []layerSnapshot
	cfg    storeConfig
}

// Entry is a single key and its stored payload. A nil Value represents an
// explicit null, which is distinct from an absent key.
type Entry struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

type entry struct {
	key   string
	value *string
}

type aliasEntry struct {
	alias  string
	target string
}

// Option configures a Store on construction.
type Option func(*storeConfig)

type storeConfig struct {
	caseSensitive bool
	logger        Logger
	location      *time.Location
	evaluator     Evaluator
	programCache  ProgramCache
	functions     *FunctionRegistry
	activityHooks activity.Hooks
	actorID       string
	tenantID      string
}

func applyOptions(opts []Option) storeConfig {
	cfg := storeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (cfg storeConfig) clone() storeConfig {
	out := cfg
	out.activityHooks = cloneActivityHooks(cfg.activityHooks)
	if cfg.functions != nil {
		out.functions = cfg.functions.Clone()
	}
	return out
}

func (s *Store) logger() Logger {
	if s == nil || s.cfg.logger == nil {
		return noopLogger{}
	}
	return s.cfg.logger
}

func (s *Store) location() *time.Location {
	if s == nil || s.cfg.location == nil {
		return time.UTC
	}
	return s.cfg.location
}
