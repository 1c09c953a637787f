package authstate

import "errors"

// User-facing failure messages. These are the exact strings surfaced in
// [State.Err]; forms render them verbatim, so their wording is part of the
// public contract.
const (
	// MsgInvalidCredentials is shown when a login attempt names an
	// unknown email or the wrong password.
	MsgInvalidCredentials = "Invalid credentials"
	// MsgLoginFailed is shown when a login attempt fails for any other
	// reason, such as the credential store being unreachable.
	MsgLoginFailed = "Login failed"
	// MsgUserExists is shown when registration targets an email that is
	// already registered.
	MsgUserExists = "User already exists"
	// MsgRegistrationFailed is shown when registration fails for any
	// other reason.
	MsgRegistrationFailed = "Registration failed"
)

var (
	// ErrManagerNotReady is returned by operations invoked on a nil or
	// unbuilt manager.
	ErrManagerNotReady = errors.New("manager not initialized")
	// ErrResetDisabled is returned by the password-reset operations when
	// the flow is switched off in config.
	ErrResetDisabled = errors.New("password reset disabled")
	// ErrResetInvalid is returned when a reset token fails to decode or
	// names no outstanding challenge.
	ErrResetInvalid = errors.New("password reset challenge invalid")
	// ErrResetExpired is returned when a reset token names a challenge
	// past its deadline.
	ErrResetExpired = errors.New("password reset challenge expired")
	// ErrResetAttempts is returned when a challenge's verification
	// budget is exhausted.
	ErrResetAttempts = errors.New("password reset attempts exceeded")
	// ErrResetUnavailable is returned when the credential store cannot
	// be reached during a reset operation.
	ErrResetUnavailable = errors.New("password reset backend unavailable")
)
