package activity

import (
	"strings"
	"time"
)

// Verbs emitted for option store changes.
const (
	VerbEntryCreated = "options.created"
	VerbEntryUpdated = "options.updated"
	VerbAliasAdded   = "options.alias.added"
	VerbLayerApplied = "options.layer.applied"
)

// Object types carried by option store events.
const (
	ObjectEntry = "options.entry"
	ObjectLayer = "options.layer"
)

// ScopeContext captures the scope a layer event refers to.
type ScopeContext struct {
	Name       string
	Priority   int
	SnapshotID string
}

// EntryEventInput describes the fields shared by option store events.
type EntryEventInput struct {
	ActorID    string
	TenantID   string
	Channel    string
	Key        string
	Alias      string
	OldValue   *string
	NewValue   *string
	Scope      ScopeContext
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildEntryCreatedEvent describes the first write of a key.
func BuildEntryCreatedEvent(input EntryEventInput) Event {
	return buildEvent(VerbEntryCreated, ObjectEntry, strings.TrimSpace(input.Key), input)
}

// BuildEntryUpdatedEvent describes an overwrite of an existing key.
func BuildEntryUpdatedEvent(input EntryEventInput) Event {
	return buildEvent(VerbEntryUpdated, ObjectEntry, strings.TrimSpace(input.Key), input)
}

// BuildAliasAddedEvent describes an alias registration. The object id is the
// alias itself.
func BuildAliasAddedEvent(input EntryEventInput) Event {
	return buildEvent(VerbAliasAdded, ObjectEntry, strings.TrimSpace(input.Alias), input)
}

// BuildLayerAppliedEvent describes a scoped layer merged into a store.
func BuildLayerAppliedEvent(input EntryEventInput) Event {
	objectID := strings.TrimSpace(input.Scope.SnapshotID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Scope.Name)
	}
	return buildEvent(VerbLayerApplied, ObjectLayer, objectID, input)
}

func buildEvent(verb, objectType, objectID string, input EntryEventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}
	if key := strings.TrimSpace(input.Key); key != "" {
		set("key", key)
	}
	if alias := strings.TrimSpace(input.Alias); alias != "" {
		set("alias", alias)
	}
	if input.OldValue != nil {
		set("old_value", *input.OldValue)
	}
	if input.NewValue != nil {
		set("new_value", *input.NewValue)
	}
	if input.Scope.Name != "" {
		set("scope_name", input.Scope.Name)
		set("scope_priority", input.Scope.Priority)
	}
	if input.Scope.SnapshotID != "" {
		set("snapshot_id", input.Scope.SnapshotID)
	}
	if objectID == "" {
		objectID = objectType
	}
	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
