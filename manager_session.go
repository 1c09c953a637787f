package authstate

import (
	"context"
	"errors"
	"log"

	"github.com/emberlock/authstate/credstore"
)

// Restore settles the initial state from the persisted session slot. An
// empty slot, an unreachable store, and a discarded corrupt payload all
// settle Unauthenticated; only a decodable session restores
// Authenticated. Restore never sets a user-facing error.
func (m *Manager) Restore(ctx context.Context) State {
	if m == nil {
		return State{Status: StatusUnknown}
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	user, err := m.store.LoadSession(ctx)
	if err != nil {
		if errors.Is(err, credstore.ErrCorruptSession) {
			m.metricInc(MetricCorruptSessionRecovered)
			m.emitAudit(ctx, auditEventCorruptSessionRecovered, true, "", "", err, nil)
		} else {
			log.Print("authstate: session restore failed")
		}
		return m.setState(State{Status: StatusUnauthenticated})
	}

	if user == nil {
		m.metricInc(MetricRestoreEmpty)
		m.emitAudit(ctx, auditEventSessionRestoreEmpty, true, "", "", nil, nil)
		return m.setState(State{Status: StatusUnauthenticated})
	}

	m.metricInc(MetricSessionRestored)
	m.emitAudit(ctx, auditEventSessionRestored, true, user.ID, user.Email, nil, nil)
	return m.setState(State{Status: StatusAuthenticated, User: user})
}

// Logout clears the persisted session and settles Unauthenticated. The
// state transition happens even when the store write fails; a stale
// session slot is preferable to a UI stuck signed in.
func (m *Manager) Logout(ctx context.Context) State {
	if m == nil {
		return State{Status: StatusUnknown}
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	prev := m.Snapshot()

	if err := m.store.ClearSession(ctx); err != nil {
		log.Print("authstate: session clear failed on logout")
	}

	userID, email := "", ""
	if prev.User != nil {
		userID, email = prev.User.ID, prev.User.Email
	}
	m.metricInc(MetricLogout)
	m.emitAudit(ctx, auditEventLogout, true, userID, email, nil, nil)

	return m.setState(State{Status: StatusUnauthenticated})
}

// ClearError drops the transient error message, leaving authentication
// state untouched.
func (m *Manager) ClearError() State {
	if m == nil {
		return State{Status: StatusUnknown}
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	next := m.Snapshot()
	if next.Err == "" {
		return next
	}
	next.Err = ""
	return m.setState(next)
}
