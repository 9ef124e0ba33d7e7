// Package state defines persistence-facing contracts for loading and saving
// per-scope option entries, plus a resolver that merges those scopes with the
// core opts primitives.
//
//   - Store only loads/saves the entries of a single Ref.
//   - Resolver loads entries for several scopes and merges them by building
//     opts.Layer values and an opts.Stack.
//   - The opts package stays persistence-agnostic.
//
// Data flow:
//
//	Store -> Resolver -> opts.NewStack(...).Merge(...) -> *opts.Store
//
// Meta.SnapshotID is mapped onto opts.Layer.SnapshotID and is observable
// through (*opts.Store).Trace.
//
// Ref.Identifier() provides the canonical storage key, based on the
// system/tenant/org/team/user scope model.
package state
