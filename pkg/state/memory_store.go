package state

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	opts "github.com/goliatone/go-optstore"
)

// MemoryStore is an in-memory Store keyed by Ref.Identifier(). Each save
// stamps a fresh snapshot id, a monotonically increasing ETag and UpdatedAt.
type MemoryStore struct {
	mu       sync.RWMutex
	records  map[string]memoryRecord
	revision int
	now      func() time.Time
}

type memoryRecord struct {
	entries []opts.Entry
	meta    Meta
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]memoryRecord{}, now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, ref Ref) ([]opts.Entry, Meta, bool, error) {
	key, err := ref.Identifier()
	if err != nil {
		return nil, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, Meta{}, false, nil
	}
	return cloneEntries(record.entries), cloneMeta(record.meta), true, nil
}

// Save stores entries and returns the stored meta. A caller-supplied ETag
// that does not match the current record fails with ErrETagMismatch.
func (s *MemoryStore) Save(_ context.Context, ref Ref, entries []opts.Entry, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.records[key]; ok && meta.ETag != "" && current.meta.ETag != meta.ETag {
		return current.meta, ErrETagMismatch
	}

	s.revision++
	stored := cloneMeta(meta)
	stored.SnapshotID = uuid.NewString()
	stored.ETag = strconv.Itoa(s.revision)
	stored.UpdatedAt = s.now().UTC()
	s.records[key] = memoryRecord{entries: cloneEntries(entries), meta: stored}
	return cloneMeta(stored), nil
}

// Put seeds a record without revision checks.
func (s *MemoryStore) Put(ref Ref, entries []opts.Entry, meta Meta) error {
	key, err := ref.Identifier()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.records[key] = memoryRecord{entries: cloneEntries(entries), meta: cloneMeta(meta)}
	s.mu.Unlock()
	return nil
}

func cloneEntries(entries []opts.Entry) []opts.Entry {
	if entries == nil {
		return nil
	}
	out := make([]opts.Entry, len(entries))
	for i, e := range entries {
		out[i] = opts.Entry{Key: e.Key}
		if e.Value != nil {
			value := *e.Value
			out[i].Value = &value
		}
	}
	return out
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}
