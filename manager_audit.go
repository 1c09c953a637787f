package authstate

import (
	"context"
	"errors"
	"time"

	"github.com/emberlock/authstate/credstore"
)

const (
	auditEventLoginSuccess            = "login_success"
	auditEventLoginFailure            = "login_failure"
	auditEventRegisterSuccess         = "register_success"
	auditEventRegisterDuplicate       = "register_duplicate"
	auditEventRegisterFailure         = "register_failure"
	auditEventLogout                  = "logout"
	auditEventSessionRestored         = "session_restored"
	auditEventSessionRestoreEmpty     = "session_restore_empty"
	auditEventCorruptSessionRecovered = "corrupt_session_recovered"
	auditEventPasswordResetRequest    = "password_reset_request"
	auditEventPasswordResetConfirm    = "password_reset_confirm"
)

// AuditErrorCode is the stable, enumerable form of a failure cause carried
// in [AuditEvent].Error.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrDuplicate          AuditErrorCode = "duplicate"
	auditErrCorruptSession     AuditErrorCode = "corrupt_session"
	auditErrUserNotFound       AuditErrorCode = "user_not_found"
	auditErrResetDisabled      AuditErrorCode = "reset_disabled"
	auditErrInvalidToken       AuditErrorCode = "invalid_token"
	auditErrTokenExpired       AuditErrorCode = "token_expired"
	auditErrAttemptsExceeded   AuditErrorCode = "attempts_exceeded"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

// errInvalidCredentials drives audit coding for rejected logins without
// leaking which half of the credential pair was wrong.
var errInvalidCredentials = errors.New("invalid credentials")

func (m *Manager) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	email string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if m == nil || m.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	m.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, errInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, credstore.ErrDuplicateEmail):
		return auditErrDuplicate
	case errors.Is(err, credstore.ErrCorruptSession):
		return auditErrCorruptSession
	case errors.Is(err, credstore.ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrResetDisabled):
		return auditErrResetDisabled
	case errors.Is(err, ErrResetInvalid),
		errors.Is(err, credstore.ErrChallengeNotFound),
		errors.Is(err, credstore.ErrChallengeMismatch):
		return auditErrInvalidToken
	case errors.Is(err, ErrResetExpired),
		errors.Is(err, credstore.ErrChallengeExpired):
		return auditErrTokenExpired
	case errors.Is(err, ErrResetAttempts),
		errors.Is(err, credstore.ErrChallengeAttempts):
		return auditErrAttemptsExceeded
	case errors.Is(err, ErrResetUnavailable),
		errors.Is(err, credstore.ErrUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
