package opts

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/goliatone/go-optstore/pkg/activity"
)

func TestWritesEmitActivity(t *testing.T) {
	capture := &activity.CaptureHook{}
	store := New(
		WithActivityHooks(activity.Hooks{capture, nil}),
		WithActivityActor("actor-1", "tenant-1"),
	)

	store.SetString("theme", "light")
	if err := Set(store, "theme", "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}
	store.SetAlias("theme", "ui.theme")

	want := []string{activity.VerbEntryCreated, activity.VerbEntryUpdated, activity.VerbAliasAdded}
	if got := capture.Verbs(); !reflect.DeepEqual(want, got) {
		t.Fatalf("verbs mismatch: want %v, got %v", want, got)
	}

	updated := capture.Events[1]
	if updated.ActorID != "actor-1" || updated.TenantID != "tenant-1" {
		t.Fatalf("expected actor and tenant to be stamped, got %+v", updated)
	}
	if updated.Channel != activity.DefaultChannel || updated.ObjectID != "theme" {
		t.Fatalf("unexpected channel/object: %+v", updated)
	}
	if updated.Metadata["old_value"] != "light" || updated.Metadata["new_value"] != "dark" {
		t.Fatalf("expected old and new values in metadata, got %v", updated.Metadata)
	}
	if capture.Events[2].ObjectID != "ui.theme" {
		t.Fatalf("expected alias event keyed by alias, got %q", capture.Events[2].ObjectID)
	}
	if len(store.ActivityHooks()) != 1 {
		t.Fatalf("expected nil hooks to be dropped")
	}
}

func TestFromEntriesLoadsSilently(t *testing.T) {
	capture := &activity.CaptureHook{}
	one, two := "1", "2"
	persisted := []Entry{{Key: "a", Value: &one}, {Key: "b", Value: &two}}

	store := FromEntries(persisted, WithActivityHooks(activity.Hooks{capture}))
	if store.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", store.Len())
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events while loading, got %v", capture.Verbs())
	}

	store.AddEntries(persisted[:1])
	want := []string{activity.VerbEntryUpdated}
	if got := capture.Verbs(); !reflect.DeepEqual(want, got) {
		t.Fatalf("expected AddEntries to report writes: want %v, got %v", want, got)
	}
}

func TestNullWriteOmitsNewValue(t *testing.T) {
	capture := &activity.CaptureHook{}
	store := New(WithActivityHooks(activity.Hooks{capture}))

	store.SetRaw("token", nil)

	if len(capture.Events) != 1 {
		t.Fatalf("expected one event, got %d", len(capture.Events))
	}
	if _, ok := capture.Events[0].Metadata["new_value"]; ok {
		t.Fatalf("expected null write to omit new_value")
	}
}

func TestHookFailuresAreLoggedNotReturned(t *testing.T) {
	var events []LogEvent
	failing := activity.HookFunc(func(context.Context, activity.Event) error {
		return errors.New("sink down")
	})
	store := New(
		WithActivityHooks(activity.Hooks{failing}),
		WithLogger(LoggerFunc(func(e LogEvent) { events = append(events, e) })),
	)

	if err := Set(store, "k", 1); err != nil {
		t.Fatalf("expected hook failure to stay out of Set, got %v", err)
	}
	if store.Value("k") != "1" {
		t.Fatalf("expected write to persist despite hook failure")
	}
	if len(events) != 1 || events[0].Op != OpNotify || events[0].Key != "k" {
		t.Fatalf("expected notify failure to be logged, got %+v", events)
	}
}

func TestStackMergeEmitsLayerEvents(t *testing.T) {
	capture := &activity.CaptureHook{}
	system := storeWith("a", "1")
	user := storeWith("b", "2")

	stack, err := NewStack(
		NewLayer(NewScope("system", ScopePrioritySystem), system, WithSnapshotID("snap-sys")),
		NewLayer(NewScope("user", ScopePriorityUser), user),
	)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}
	if _, err := stack.Merge(WithActivityHooks(activity.Hooks{capture})); err != nil {
		t.Fatalf("merge: %v", err)
	}

	if len(capture.Events) != 2 {
		t.Fatalf("expected one event per layer, got %d", len(capture.Events))
	}
	if capture.Events[0].ObjectID != "snap-sys" || capture.Events[1].ObjectID != "user" {
		t.Fatalf("expected weakest layer first, got %q then %q", capture.Events[0].ObjectID, capture.Events[1].ObjectID)
	}
	for _, event := range capture.Events {
		if event.Verb != activity.VerbLayerApplied || event.ObjectType != activity.ObjectLayer {
			t.Fatalf("unexpected layer event %+v", event)
		}
	}
}

func TestCloneKeepsHooks(t *testing.T) {
	capture := &activity.CaptureHook{}
	store := New(WithActivityHooks(activity.Hooks{capture}))

	clone := store.Clone()
	clone.SetString("x", "1")

	if len(capture.Events) != 1 {
		t.Fatalf("expected clone writes to reach the shared hook, got %d events", len(capture.Events))
	}
}
