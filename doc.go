// Package authstate provides an embeddable session/authentication state
// manager for demonstration auth UIs: registration, login, logout, and a
// password-reset flow backed by a mock, client-local credential store.
//
// The package owns exactly one piece of truth: who is logged in. It exposes
// a [Manager] that runs a small finite state machine over
// {Unknown, Authenticated, Unauthenticated} with an orthogonal, transient
// error slot, and persists the current session through [credstore.Store] so
// state survives process restarts within the same client.
//
// # Architecture boundaries
//
// authstate is the public surface. It exposes [Manager], [Builder],
// [Config], [State], and the audit/metrics value types. Credential
// persistence (the user registry, the session slot, and their key-value
// encoding) lives in the credstore sub-package and is injected via
// [Builder.WithKV] or [Builder.WithRedis].
//
// # What this package must NOT do
//
//   - Re-validate input shape (required fields, email syntax, password
//     length). Forms own field-level validation; the manager only checks
//     uniqueness and credential correctness.
//   - Hash passwords, issue tokens, or talk to a network. The store is an
//     in-process mock and is not a security boundary.
//   - Expose credential secrets. Only [credstore.PublicUser] values leave
//     the store layer.
//
// # State contract
//
// Manager operations never return Go errors for credential or store
// failures. Each operation settles into a new [State] whose Err field
// carries at most one human-readable message, cleared by the next
// successful operation or an explicit [Manager.ClearError]. Callers that
// need to branch on failure read the returned snapshot.
package authstate
