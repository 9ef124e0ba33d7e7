package opts

import (
	"context"

	"github.com/goliatone/go-optstore/pkg/activity"
)

// WithActivityHooks attaches activity hooks notified on every write. Hooks are
// cloned and nil entries dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *storeConfig) {
		cfg.activityHooks = normalized
	}
}

// WithActivityActor sets the actor and tenant identifiers stamped on emitted
// activity events.
func WithActivityActor(actorID, tenantID string) Option {
	return func(cfg *storeConfig) {
		cfg.actorID = actorID
		cfg.tenantID = tenantID
	}
}

// ActivityHooks returns a cloned slice of the configured activity hooks.
func (s *Store) ActivityHooks() activity.Hooks {
	if s == nil {
		return nil
	}
	return cloneActivityHooks(s.cfg.activityHooks)
}

func (s *Store) notifySet(key string, old, value *string, existed bool) {
	input := s.eventInput()
	input.Key = key
	input.OldValue = old
	input.NewValue = value
	if existed {
		s.emit(key, activity.BuildEntryUpdatedEvent(input))
		return
	}
	s.emit(key, activity.BuildEntryCreatedEvent(input))
}

func (s *Store) notifyAlias(key, alias string) {
	input := s.eventInput()
	input.Key = key
	input.Alias = alias
	s.emit(alias, activity.BuildAliasAddedEvent(input))
}

func (s *Store) notifyLayer(layer Layer) {
	input := s.eventInput()
	input.Scope = activity.ScopeContext{
		Name:       layer.Scope.Name,
		Priority:   layer.Scope.Priority,
		SnapshotID: layer.SnapshotID,
	}
	s.emit(layer.Scope.Name, activity.BuildLayerAppliedEvent(input))
}

func (s *Store) eventInput() activity.EntryEventInput {
	return activity.EntryEventInput{
		ActorID:  s.cfg.actorID,
		TenantID: s.cfg.tenantID,
	}
}

// emit notifies hooks synchronously. Hook failures do not undo the write; they
// are reported to the logger.
func (s *Store) emit(key string, event activity.Event) {
	if len(s.cfg.activityHooks) == 0 {
		return
	}
	emitter := activity.NewEmitter(s.cfg.activityHooks, activity.Config{Enabled: true})
	if err := emitter.Emit(context.Background(), event); err != nil {
		s.logger().Log(LogEvent{Op: OpNotify, Key: key, Err: err})
	}
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
