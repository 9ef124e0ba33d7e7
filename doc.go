// Package opts provides a string-backed option store with typed access.
//
// Every value is persisted as a string (or an explicit null) and decoded on
// demand into the type requested by the caller:
//
//	store := opts.New()
//	_ = opts.Set(store, "server.port", 8080)
//	port := opts.Get(store, "SERVER.PORT", 80)
//
// Decoding picks the first matching strategy in a fixed order: string,
// date/time, registered enum, convertible primitive, UUID, duration, and
// finally JSON. Decode failures never reach the caller; Get returns the
// supplied default and reports the failure to the configured Logger.
//
// Keys are case-insensitive by default. Aliases provide alternate lookup keys
// consulted only when a direct lookup misses. Merge, Stack and Trace combine
// stores from several scopes and report which scope supplied a value.
//
// A Store performs no locking. Concurrent use of one Store must be serialized
// by the caller, and CloneWithCasePolicy builds a new Store rather than
// rebuilding one in place.
package opts
