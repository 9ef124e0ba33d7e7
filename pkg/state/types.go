package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	opts "github.com/goliatone/go-optstore"
)

var ErrETagMismatch = errors.New("state: etag mismatch")

// Ref identifies one persisted snapshot for one options domain.
type Ref struct {
	Domain string
	Scope  opts.Scope
}

// Meta is storage-owned metadata used for trace/audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves the entries of one scope reference.
type Store interface {
	Load(ctx context.Context, ref Ref) (entries []opts.Entry, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, entries []opts.Entry, meta Meta) (Meta, error)
}

// Resolver loads per-scope entries and merges them into a single opts.Store.
type Resolver struct {
	Store Store
	// Options configure the merged store and the store handed to mutators.
	Options []opts.Option
	// Validate, when set, runs after a mutation and before it is saved.
	Validate func(*opts.Store) error
}

// Mutator edits the store loaded for a single Ref.
type Mutator func(*opts.Store) error

func (r Ref) Identifier() (string, error) {
	switch r.Scope.Name {
	case "system":
		return fmt.Sprintf("system/%s", r.Domain), nil
	case "tenant", "org", "team", "user":
		metadataKey := r.Scope.Name + "_id"
		id, ok := r.Scope.Metadata[metadataKey].(string)
		if !ok || id == "" {
			return "", fmt.Errorf("missing metadata key %q for scope %q", metadataKey, r.Scope.Name)
		}
		return fmt.Sprintf("%s/%s/%s", r.Scope.Name, id, r.Domain), nil
	default:
		return "", fmt.Errorf("unsupported scope name %q", r.Scope.Name)
	}
}

func (r Resolver) Resolve(ctx context.Context, domain string, scopes ...opts.Scope) (*opts.Store, error) {
	if r.Store == nil {
		return nil, fmt.Errorf("state: store is required")
	}
	if domain == "" {
		return nil, fmt.Errorf("state: domain is required")
	}
	if len(scopes) == 0 {
		return nil, fmt.Errorf("state: at least one scope is required")
	}

	layers, err := r.loadLayers(ctx, domain, scopes)
	if err != nil {
		return nil, err
	}
	if len(layers) == 0 {
		return nil, fmt.Errorf("state: no layers found for domain %q", domain)
	}
	return r.merge(layers)
}

// ResolveWithDefaults behaves like Resolve with defaults applied as the
// weakest layer, named "defaults".
func (r Resolver) ResolveWithDefaults(ctx context.Context, domain string, defaults *opts.Store, scopes ...opts.Scope) (*opts.Store, error) {
	if r.Store == nil {
		return nil, fmt.Errorf("state: store is required")
	}
	if domain == "" {
		return nil, fmt.Errorf("state: domain is required")
	}

	prioritySet := make(map[int]struct{}, len(scopes))
	minPriority := 0
	if len(scopes) > 0 {
		minPriority = scopes[0].Priority
	}
	for _, scope := range scopes {
		if scope.Name == "defaults" {
			return nil, fmt.Errorf("state: scope name %q is reserved", "defaults")
		}
		prioritySet[scope.Priority] = struct{}{}
		if scope.Priority < minPriority {
			minPriority = scope.Priority
		}
	}

	defaultsPriority := 0
	if len(scopes) > 0 {
		defaultsPriority = minPriority - 1
		for {
			if _, ok := prioritySet[defaultsPriority]; !ok {
				break
			}
			defaultsPriority--
		}
	}

	layers, err := r.loadLayers(ctx, domain, scopes)
	if err != nil {
		return nil, err
	}
	defaultsScope := opts.NewScope("defaults", defaultsPriority, opts.WithScopeLabel("Defaults"))
	layers = append(layers, opts.NewLayer(defaultsScope, defaults))
	return r.merge(layers)
}

// Mutate loads one snapshot, applies fn, validates, then saves. A non-empty
// meta.ETag must match the stored ETag.
func (r Resolver) Mutate(ctx context.Context, ref Ref, meta Meta, fn Mutator) (*opts.Store, Meta, error) {
	if r.Store == nil {
		return nil, Meta{}, fmt.Errorf("state: store is required")
	}
	if ref.Domain == "" {
		return nil, Meta{}, fmt.Errorf("state: domain is required")
	}
	if ref.Scope.Name == "" {
		return nil, Meta{}, fmt.Errorf("state: scope name is required")
	}
	if fn == nil {
		return nil, Meta{}, fmt.Errorf("state: mutator is required")
	}

	entries, loadedMeta, ok, err := r.Store.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("state: load %q for scope %q: %w", ref.Domain, ref.Scope.Name, err)
	}
	if !ok {
		entries = nil
		loadedMeta = Meta{}
	}

	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return nil, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	store := opts.FromEntries(entries, r.Options...)
	if err := fn(store); err != nil {
		return nil, loadedMeta, err
	}
	if r.Validate != nil {
		if err := r.Validate(store); err != nil {
			return nil, loadedMeta, err
		}
	}

	savedMeta, err := r.Store.Save(ctx, ref, store.Entries(), mergeMeta(loadedMeta, meta))
	if err != nil {
		return nil, loadedMeta, fmt.Errorf("state: save %q for scope %q: %w", ref.Domain, ref.Scope.Name, err)
	}

	merged, err := r.merge([]opts.Layer{
		opts.NewLayer(ref.Scope, store, opts.WithSnapshotID(savedMeta.SnapshotID)),
	})
	if err != nil {
		return nil, loadedMeta, err
	}
	return merged, savedMeta, nil
}

func (r Resolver) loadLayers(ctx context.Context, domain string, scopes []opts.Scope) ([]opts.Layer, error) {
	layers := make([]opts.Layer, 0, len(scopes)+1)
	for _, scope := range scopes {
		entries, meta, ok, err := r.Store.Load(ctx, Ref{Domain: domain, Scope: scope})
		if err != nil {
			return nil, fmt.Errorf("state: load %q for scope %q: %w", domain, scope.Name, err)
		}
		if !ok {
			continue
		}
		store := opts.FromEntries(entries, r.Options...)
		layers = append(layers, opts.NewLayer(scope, store, opts.WithSnapshotID(meta.SnapshotID)))
	}
	return layers, nil
}

func (r Resolver) merge(layers []opts.Layer) (*opts.Store, error) {
	stack, err := opts.NewStack(layers...)
	if err != nil {
		return nil, fmt.Errorf("state: stack: %w", err)
	}
	return stack.Merge(r.Options...)
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}
