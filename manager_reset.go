package authstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emberlock/authstate/credstore"
	"github.com/emberlock/authstate/internal"
)

// RequestPasswordReset issues a reset challenge for email and returns the
// opaque token the form would normally deliver out of band. The flow is
// simulated end to end: no mail is sent, the caller hands the token
// straight to [Manager.ConfirmPasswordReset].
//
// A token is issued whether or not the email is registered; confirmation
// fails later for unknown accounts. Requesting therefore reveals nothing
// about the registry.
//
// Unlike the state machine operations, the reset flow returns ordinary
// errors and never touches [State]: the requesting form owns its own
// error presentation.
func (m *Manager) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if m == nil {
		return "", ErrManagerNotReady
	}
	if !m.config.PasswordReset.Enabled {
		return "", ErrResetDisabled
	}

	email = m.canonicalEmail(email)

	cid, err := internal.NewChallengeID()
	if err != nil {
		return "", err
	}
	secret, err := internal.NewResetSecret()
	if err != nil {
		return "", err
	}

	ch := credstore.ResetChallenge{
		ID:         cid.String(),
		Email:      email,
		SecretHash: internal.HashResetSecret(secret),
		ExpiresAt:  time.Now().Add(m.config.PasswordReset.ResetTTL),
	}
	if err := m.store.CreateChallenge(ctx, ch); err != nil {
		m.emitAudit(ctx, auditEventPasswordResetRequest, false, "", email, err, nil)
		return "", fmt.Errorf("%w: %v", ErrResetUnavailable, err)
	}

	token, err := internal.EncodeResetToken(cid.String(), secret)
	if err != nil {
		return "", err
	}

	m.metricInc(MetricPasswordResetRequest)
	m.emitAudit(ctx, auditEventPasswordResetRequest, true, "", email, nil, nil)

	return token, nil
}

// ConfirmPasswordReset redeems token and replaces the account's password.
// The challenge is single-use: success, expiry, and attempt exhaustion all
// consume it.
func (m *Manager) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if m == nil {
		return ErrManagerNotReady
	}
	if !m.config.PasswordReset.Enabled {
		return ErrResetDisabled
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	id, secret, err := internal.DecodeResetToken(token)
	if err != nil {
		m.metricInc(MetricPasswordResetConfirmFailure)
		m.emitAudit(ctx, auditEventPasswordResetConfirm, false, "", "", ErrResetInvalid, nil)
		return ErrResetInvalid
	}

	email, err := m.store.ConsumeChallenge(ctx, id, internal.HashResetSecret(secret), m.config.PasswordReset.MaxAttempts)
	if err != nil {
		return m.resetConfirmFailed(ctx, "", err)
	}

	if err := m.store.UpdateSecret(ctx, email, newPassword); err != nil {
		return m.resetConfirmFailed(ctx, email, err)
	}

	m.metricInc(MetricPasswordResetConfirmSuccess)
	m.emitAudit(ctx, auditEventPasswordResetConfirm, true, "", email, nil, nil)

	return nil
}

// resetConfirmFailed records the failure and maps store-level challenge
// errors onto the package sentinels.
func (m *Manager) resetConfirmFailed(ctx context.Context, email string, err error) error {
	if errors.Is(err, credstore.ErrChallengeAttempts) {
		m.metricInc(MetricPasswordResetAttemptsExceeded)
	} else {
		m.metricInc(MetricPasswordResetConfirmFailure)
	}
	m.emitAudit(ctx, auditEventPasswordResetConfirm, false, "", email, err, nil)

	switch {
	case errors.Is(err, credstore.ErrChallengeNotFound),
		errors.Is(err, credstore.ErrChallengeMismatch),
		errors.Is(err, credstore.ErrUserNotFound):
		return ErrResetInvalid
	case errors.Is(err, credstore.ErrChallengeExpired):
		return ErrResetExpired
	case errors.Is(err, credstore.ErrChallengeAttempts):
		return ErrResetAttempts
	case errors.Is(err, credstore.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrResetUnavailable, err)
	default:
		return err
	}
}
