package opts

import (
	"errors"
	"fmt"
	"testing"
)

func storeWith(pairs ...string) *Store {
	store := New()
	for i := 0; i+1 < len(pairs); i += 2 {
		store.SetString(pairs[i], pairs[i+1])
	}
	return store
}

func TestNewScopeCopiesMetadata(t *testing.T) {
	meta := map[string]any{"owner": "system"}
	scope := NewScope("system", 50,
		WithScopeLabel("System Defaults"),
		WithScopeMetadata(meta),
	)

	meta["owner"] = "mutated"

	if got := scope.Metadata["owner"]; got != "system" {
		t.Fatalf("expected metadata copy to remain 'system', got %q", got)
	}
	if scope.Label != "System Defaults" {
		t.Fatalf("label not set, got %q", scope.Label)
	}
}

func TestNewLayerClonesStore(t *testing.T) {
	store := storeWith("env", "prod")

	layer := NewLayer(NewScope("user", 100), store, WithSnapshotID("abc-123"))

	store.SetString("env", "qa")
	if got := layer.Store.Value("env"); got != "prod" {
		t.Fatalf("expected layer store to remain isolated, got %q", got)
	}
	if layer.SnapshotID != "abc-123" {
		t.Fatalf("snapshot id not set, got %q", layer.SnapshotID)
	}
	if NewLayer(NewScope("empty", 1), nil).Store == nil {
		t.Fatalf("expected nil store to become empty")
	}
}

func TestNewStackOrdersAndValidates(t *testing.T) {
	user := NewLayer(NewScope("user", 300), storeWith("name", "user"))
	group := NewLayer(NewScope("group", 200), storeWith("name", "group"))
	defaults := NewLayer(NewScope("defaults", 100), storeWith("name", "defaults"))

	stack, err := NewStack(defaults, user, group)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	layers := stack.Layers()
	wantOrder := []string{"user", "group", "defaults"}
	for i, want := range wantOrder {
		if layers[i].Scope.Name != want {
			t.Fatalf("layer %d: expected %q, got %q", i, want, layers[i].Scope.Name)
		}
	}
	if stack.Len() != 3 {
		t.Fatalf("expected 3 layers, got %d", stack.Len())
	}

	if _, err := NewStack(NewLayer(NewScope("", 1), nil)); !errors.Is(err, ErrScopeNameRequired) {
		t.Fatalf("expected ErrScopeNameRequired, got %v", err)
	}
	if _, err := NewStack(user, NewLayer(NewScope("user", 10), nil)); !errors.Is(err, ErrDuplicateScopeName) {
		t.Fatalf("expected ErrDuplicateScopeName, got %v", err)
	}
	if _, err := NewStack(user, NewLayer(NewScope("other", 300), nil)); !errors.Is(err, ErrPriorityOrder) {
		t.Fatalf("expected ErrPriorityOrder, got %v", err)
	}
}

func TestStackMergeStrongestWins(t *testing.T) {
	stack, err := NewStack(
		NewLayer(NewScope("system", ScopePrioritySystem), storeWith("theme", "light", "lang", "en")),
		NewLayer(NewScope("user", ScopePriorityUser), storeWith("THEME", "dark")),
	)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}

	merged, err := stack.Merge()
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got := merged.Value("theme"); got != "dark" {
		t.Fatalf("expected user to win, got %q", got)
	}
	if got := merged.Value("lang"); got != "en" {
		t.Fatalf("expected system fallback, got %q", got)
	}

	if _, err := (&Stack{}).Merge(); err == nil {
		t.Fatalf("expected error for empty stack")
	}
}

func TestStackMergeAppliesOptions(t *testing.T) {
	var events []LogEvent
	stack, _ := NewStack(NewLayer(NewScope("system", 1), storeWith("n", "x")))

	merged, err := stack.Merge(WithLogger(LoggerFunc(func(e LogEvent) { events = append(events, e) })))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	_ = Get(merged, "n", 0)
	if len(events) != 1 || events[0].Op != OpDecode {
		t.Fatalf("expected merged store to use the supplied logger, got %+v", events)
	}
}

func TestTraceReportsEveryLayer(t *testing.T) {
	merged, err := SystemTenantOrgTeamUser(
		storeWith("limit", "10"),
		storeWith("limit", "20"),
		nil,
		storeWith("other", "x"),
		nil,
	)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	trace := merged.Trace("LIMIT")
	if len(trace.Layers) != 5 {
		t.Fatalf("expected 5 layers, got %d", len(trace.Layers))
	}
	names := make([]string, 0, len(trace.Layers))
	for _, layer := range trace.Layers {
		names = append(names, fmt.Sprintf("%s:%v", layer.Scope.Name, layer.Found))
	}
	want := "[user:false team:false org:false tenant:true system:true]"
	if got := fmt.Sprint(names); got != want {
		t.Fatalf("trace layers mismatch:\nwant: %s\n got: %s", want, got)
	}

	winner, ok := trace.Winner()
	if !ok || winner.Scope.Name != "tenant" || *winner.Value != "20" {
		t.Fatalf("expected tenant to win with 20, got %+v", winner)
	}
	if got := Get(merged, "limit", 0); got != 20 {
		t.Fatalf("expected merged value 20, got %d", got)
	}
}

func TestTraceResolvesAliasesPerLayer(t *testing.T) {
	system := storeWith("port", "80")
	system.SetAlias("port", "listen")
	user := storeWith("listen", "8080")

	merged, err := SystemTenantOrgTeamUser(system, nil, nil, nil, user)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	winner, ok := merged.Trace("listen").Winner()
	if !ok || winner.Scope.Name != "user" {
		t.Fatalf("expected user entry to win, got %+v", winner)
	}
	if got := merged.Value("listen"); got != "8080" {
		t.Fatalf("expected direct entry over alias, got %q", got)
	}
}

func TestTraceWithoutLayers(t *testing.T) {
	trace := storeWith("a", "1").Trace("a")
	if len(trace.Layers) != 0 {
		t.Fatalf("expected no layers for unmerged store, got %d", len(trace.Layers))
	}
	if _, ok := trace.Winner(); ok {
		t.Fatalf("expected no winner")
	}
}

func TestTraceJSONRoundTrip(t *testing.T) {
	merged, err := SystemTenantOrgTeamUser(storeWith("a", "1"), nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	trace := merged.Trace("a")

	payload, err := trace.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	decoded, err := TraceFromJSON(payload)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	winner, ok := decoded.Winner()
	if !ok || winner.Scope.Name != "system" || *winner.Value != "1" {
		t.Fatalf("unexpected decoded winner %+v", winner)
	}
	if _, err := TraceFromJSON([]byte("{")); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}

func TestMergedStoreCloneKeepsLayers(t *testing.T) {
	merged, err := SystemTenantOrgTeamUser(storeWith("a", "1"), nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	clone := CloneWithCasePolicy(merged, false)
	if len(clone.Trace("a").Layers) != 5 {
		t.Fatalf("expected clone to retain layers")
	}
}

func BenchmarkTrace(b *testing.B) {
	layers := make([]Layer, 10)
	for i := 0; i < 10; i++ {
		name := fmt.Sprintf("layer_%d", i)
		layers[i] = NewLayer(NewScope(name, 100-i), storeWith("env", name, "limits.weekly", fmt.Sprint(700-i*10)))
	}
	stack, err := NewStack(layers...)
	if err != nil {
		b.Fatalf("stack: %v", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		b.Fatalf("merge: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := merged.Trace("limits.weekly").Winner(); !ok {
			b.Fatalf("expected a winner")
		}
	}
}
