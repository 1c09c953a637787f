package authstate

import "github.com/emberlock/authstate/credstore"

// Status is the session authentication state.
type Status uint8

const (
	// StatusUnknown is the initial state: the persisted session has not
	// been consulted yet, so the caller cannot tell signed-in from
	// signed-out. UIs render this as loading.
	StatusUnknown Status = iota
	// StatusAuthenticated means a user is signed in and the state
	// carries a user.
	StatusAuthenticated
	// StatusUnauthenticated means nobody is signed in.
	StatusUnauthenticated
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "invalid"
	}
}

// State is an immutable snapshot of the manager. Every operation returns
// the snapshot it settled into; [Manager.Snapshot] returns the current one.
//
// User is non-nil exactly when Status is [StatusAuthenticated]. Err carries
// at most one user-facing message and is independent of Status: a failed
// login leaves Status at [StatusUnauthenticated] with Err set.
type State struct {
	Status Status
	User   *credstore.PublicUser
	Err    string
}

// LoginInput carries a login attempt. Field shape validation belongs to the
// form; the manager only checks the credentials against the store.
type LoginInput struct {
	Email    string
	Password string
}

// RegisterInput carries a registration attempt.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}
