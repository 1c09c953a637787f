// Package credstore implements the credential persistence boundary for
// authstate: a registry of registered users keyed by email plus a single
// current-session slot, layered over a generic durable key-value interface.
//
// # Design
//
// The package is split into two layers. [KV] is the raw storage boundary,
// get/set/delete on string keys, with two implementations: [MemoryKV]
// (in-process map, the default for tests and demos) and [RedisKV]
// (go-redis, namespaced keys). [Store] is the typed layer on top: it owns
// the JSON encoding of [UserRecord] and [PublicUser], enforces email
// uniqueness on insert, and self-heals corrupt session payloads by
// discarding them.
//
// # Architecture boundaries
//
// credstore knows nothing about UI state, the session state machine, or
// error messages shown to users. It reports failures as sentinel errors
// ([ErrDuplicateEmail], [ErrUnavailable]) and leaves policy to the caller.
//
// # What this package must NOT do
//
//   - Expose a UserRecord's Secret outside the package boundary except
//     through [Store.FindByEmail], which the manager alone consumes.
//   - Treat malformed stored payloads as fatal. Unknown or unparsable
//     values are handled as absent.
//   - Arbitrate concurrent writers. The store has exactly one logical
//     writer (the session manager); implementations only need to be safe
//     for concurrent calls, not transactional across them.
package credstore
