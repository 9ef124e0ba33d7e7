package opts

import (
	"errors"
	"fmt"
	"sort"
)

// Scope models a named precedence bucket (system, tenant, user, etc.). Higher
// priority values represent stronger layers.
type Scope struct {
	Name     string         `json:"name"`
	Label    string         `json:"label,omitempty"`
	Priority int            `json:"priority"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ScopeOption configures metadata on Scope creation.
type ScopeOption func(*Scope)

// WithScopeLabel sets a human-friendly label on the scope.
func WithScopeLabel(label string) ScopeOption {
	return func(s *Scope) {
		s.Label = label
	}
}

// WithScopeMetadata attaches metadata to the scope. The map is copied.
func WithScopeMetadata(metadata map[string]any) ScopeOption {
	return func(s *Scope) {
		s.Metadata = copyMetadata(metadata)
	}
}

// NewScope builds a Scope. Validation is deferred to NewStack.
func NewScope(name string, priority int, opts ...ScopeOption) Scope {
	scope := Scope{Name: name, Priority: priority}
	for _, opt := range opts {
		if opt != nil {
			opt(&scope)
		}
	}
	return scope
}

func (s Scope) clone() Scope {
	s.Metadata = copyMetadata(s.Metadata)
	return s
}

// Layer pairs a scope with the store captured for it.
type Layer struct {
	Scope      Scope
	Store      *Store
	SnapshotID string
}

// LayerOption configures optional layer metadata.
type LayerOption func(*Layer)

// WithSnapshotID sets the snapshot identifier used for provenance.
func WithSnapshotID(id string) LayerOption {
	return func(layer *Layer) {
		layer.SnapshotID = id
	}
}

// NewLayer constructs a Layer holding a copy of store, so later writes to
// store do not leak into the layer. A nil store is treated as empty.
func NewLayer(scope Scope, store *Store, opts ...LayerOption) Layer {
	layer := Layer{
		Scope: scope.clone(),
		Store: cloneOrEmpty(store),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&layer)
		}
	}
	return layer
}

var (
	// ErrScopeNameRequired indicates a missing scope name.
	ErrScopeNameRequired = errors.New("scope: name must be provided")
	// ErrDuplicateScopeName indicates a stack received two layers with the
	// same scope name.
	ErrDuplicateScopeName = errors.New("scope: names must be unique")
	// ErrPriorityOrder indicates a stack received duplicate priorities.
	ErrPriorityOrder = errors.New("scope: priorities must be strictly ordered")
)

// Stack is an immutable set of layers ordered strongest first.
type Stack struct {
	layers []Layer
}

// NewStack validates layers and sorts them by descending priority.
func NewStack(layers ...Layer) (*Stack, error) {
	seen := make(map[string]struct{}, len(layers))
	copied := make([]Layer, len(layers))
	for i, layer := range layers {
		if layer.Scope.Name == "" {
			return nil, ErrScopeNameRequired
		}
		if _, ok := seen[layer.Scope.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateScopeName, layer.Scope.Name)
		}
		seen[layer.Scope.Name] = struct{}{}
		copied[i] = cloneLayer(layer)
	}

	sort.Slice(copied, func(i, j int) bool {
		if copied[i].Scope.Priority == copied[j].Scope.Priority {
			return copied[i].Scope.Name < copied[j].Scope.Name
		}
		return copied[i].Scope.Priority > copied[j].Scope.Priority
	})
	for i := 1; i < len(copied); i++ {
		if copied[i-1].Scope.Priority <= copied[i].Scope.Priority {
			return nil, fmt.Errorf("%w: %d", ErrPriorityOrder, copied[i].Scope.Priority)
		}
	}
	return &Stack{layers: copied}, nil
}

// Layers returns copies of the layers, strongest first.
func (s *Stack) Layers() []Layer {
	if s == nil || len(s.layers) == 0 {
		return nil
	}
	out := make([]Layer, len(s.layers))
	for i := range s.layers {
		out[i] = cloneLayer(s.layers[i])
	}
	return out
}

// Len returns the number of layers in the stack.
func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.layers)
}

// Merge folds the layers weakest to strongest into a new store that retains
// the layers for Trace. opts configure the merged store; the key policy is
// taken from the strongest layer.
func (s *Stack) Merge(opts ...Option) (*Store, error) {
	if s == nil || len(s.layers) == 0 {
		return nil, fmt.Errorf("scope: stack must include at least one layer")
	}
	ordered := make([]*Store, 0, len(s.layers))
	for i := len(s.layers) - 1; i >= 0; i-- {
		ordered = append(ordered, s.layers[i].Store)
	}

	merged := Merge(ordered...)
	if len(opts) > 0 {
		cfg := applyOptions(opts)
		cfg.caseSensitive = !merged.caseInsensitive
		merged.cfg = cfg
	}

	merged.layers = make([]layerSnapshot, len(s.layers))
	for i, layer := range s.layers {
		merged.layers[i] = layerSnapshot{
			Scope:      layer.Scope.clone(),
			Store:      layer.Store.Clone(),
			SnapshotID: layer.SnapshotID,
		}
	}
	for i := len(s.layers) - 1; i >= 0; i-- {
		merged.notifyLayer(s.layers[i])
	}
	return merged, nil
}

type layerSnapshot struct {
	Scope      Scope
	Store      *Store
	SnapshotID string
}

func cloneLayer(layer Layer) Layer {
	return Layer{
		Scope:      layer.Scope.clone(),
		Store:      cloneOrEmpty(layer.Store),
		SnapshotID: layer.SnapshotID,
	}
}

func cloneLayerSnapshots(layers []layerSnapshot) []layerSnapshot {
	if len(layers) == 0 {
		return nil
	}
	out := make([]layerSnapshot, len(layers))
	for i, layer := range layers {
		out[i] = layerSnapshot{
			Scope:      layer.Scope.clone(),
			Store:      layer.Store.Clone(),
			SnapshotID: layer.SnapshotID,
		}
	}
	return out
}

func cloneOrEmpty(store *Store) *Store {
	if store == nil {
		return New()
	}
	return store.Clone()
}

func copyMetadata(origin map[string]any) map[string]any {
	if len(origin) == 0 {
		return nil
	}
	out := make(map[string]any, len(origin))
	for key, value := range origin {
		out[key] = value
	}
	return out
}
