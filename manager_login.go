package authstate

import (
	"context"
	"log"
	"time"
)

// Login checks the supplied credentials against the user registry.
//
// Success persists the session and settles Authenticated. A wrong password
// or unknown email settles Unauthenticated with [MsgInvalidCredentials];
// any store failure settles Unauthenticated with [MsgLoginFailed]. A
// rejected login also clears the persisted session, so a restart after a
// failed attempt cannot resurrect the previous user.
func (m *Manager) Login(ctx context.Context, in LoginInput) State {
	if m == nil {
		return State{Status: StatusUnknown}
	}

	start := time.Now()

	m.opMu.Lock()
	defer m.opMu.Unlock()

	email := m.canonicalEmail(in.Email)

	rec, found, err := m.store.FindByEmail(ctx, email)
	if err != nil {
		m.metricInc(MetricLoginUnavailable)
		m.emitAudit(ctx, auditEventLoginFailure, false, "", email, err, nil)
		return m.setState(State{Status: StatusUnauthenticated, Err: MsgLoginFailed})
	}

	if !found || rec.Secret != in.Password {
		if err := m.store.ClearSession(ctx); err != nil {
			log.Print("authstate: session clear failed after rejected login")
		}
		reason := "bad_password"
		if !found {
			reason = "user_not_found"
		}
		m.metricInc(MetricLoginFailure)
		m.emitAudit(ctx, auditEventLoginFailure, false, "", email, errInvalidCredentials, func() map[string]string {
			return map[string]string{
				"reason": reason,
			}
		})
		return m.setState(State{Status: StatusUnauthenticated, Err: MsgInvalidCredentials})
	}

	user := rec.Public()
	if err := m.store.SaveSession(ctx, user); err != nil {
		m.metricInc(MetricLoginUnavailable)
		m.emitAudit(ctx, auditEventLoginFailure, false, rec.ID, email, err, nil)
		return m.setState(State{Status: StatusUnauthenticated, Err: MsgLoginFailed})
	}

	m.metricInc(MetricLoginSuccess)
	if m.metrics.LatencyEnabled() {
		m.metrics.Observe(MetricLoginLatency, time.Since(start))
	}
	m.emitAudit(ctx, auditEventLoginSuccess, true, rec.ID, email, nil, nil)

	return m.setState(State{Status: StatusAuthenticated, User: &user})
}
