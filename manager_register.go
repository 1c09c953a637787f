package authstate

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/emberlock/authstate/credstore"
)

// Register creates a new user and signs them in.
//
// Success persists both the registry entry and the session and settles
// Authenticated. A duplicate email sets [MsgUserExists] and any store
// failure sets [MsgRegistrationFailed]; in both cases the previous
// authentication state is preserved, only the error slot changes.
func (m *Manager) Register(ctx context.Context, in RegisterInput) State {
	if m == nil {
		return State{Status: StatusUnknown}
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	name := strings.TrimSpace(in.Name)
	email := m.canonicalEmail(in.Email)

	rec := credstore.UserRecord{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Secret:    in.Password,
		AvatarURL: m.avatarURL(name),
	}

	if err := m.store.Insert(ctx, rec); err != nil {
		if errors.Is(err, credstore.ErrDuplicateEmail) {
			m.metricInc(MetricRegisterDuplicate)
			m.emitAudit(ctx, auditEventRegisterDuplicate, false, "", email, err, nil)
			return m.failInPlace(MsgUserExists)
		}
		m.metricInc(MetricRegisterFailure)
		m.emitAudit(ctx, auditEventRegisterFailure, false, "", email, err, nil)
		return m.failInPlace(MsgRegistrationFailed)
	}

	user := rec.Public()
	if err := m.store.SaveSession(ctx, user); err != nil {
		// The account exists but could not be signed in. Surface the
		// failure; the user can log in once the store recovers.
		m.metricInc(MetricRegisterFailure)
		m.emitAudit(ctx, auditEventRegisterFailure, false, rec.ID, email, err, nil)
		return m.failInPlace(MsgRegistrationFailed)
	}

	m.metricInc(MetricRegisterSuccess)
	m.emitAudit(ctx, auditEventRegisterSuccess, true, rec.ID, email, nil, nil)

	return m.setState(State{Status: StatusAuthenticated, User: &user})
}

// failInPlace sets the error slot without disturbing authentication state.
func (m *Manager) failInPlace(msg string) State {
	next := m.Snapshot()
	next.Err = msg
	return m.setState(next)
}
