package authstate

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/emberlock/authstate/credstore"
)

// Manager is the session state machine. It starts in [StatusUnknown] and
// settles into Authenticated or Unauthenticated through [Manager.Restore]
// and the credential operations.
//
// Operations serialize on an internal mutex: the manager is a single
// logical writer over its store, and overlapping calls observe each
// other's completed transitions, never interleaved ones. Reads
// ([Manager.Snapshot] and friends) never block behind an operation.
type Manager struct {
	config  Config
	store   *credstore.Store
	audit   *auditDispatcher
	metrics *Metrics

	// opMu serializes state-changing operations end to end, store write
	// included. stateMu guards only the published snapshot.
	opMu    sync.Mutex
	stateMu sync.RWMutex
	state   State

	listenerMu sync.Mutex
	listeners  map[int]func(State)
	nextListen int
}

// Close flushes and stops the audit dispatcher. The manager must not be
// used after Close.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	if m.audit != nil {
		m.audit.Close()
	}
}

// Store exposes the underlying credential store, mainly for seeding demo
// data and for tests.
func (m *Manager) Store() *credstore.Store {
	if m == nil {
		return nil
	}
	return m.store
}

// AuditDropped reports how many audit events were discarded on a full
// buffer.
func (m *Manager) AuditDropped() uint64 {
	if m == nil || m.audit == nil {
		return 0
	}
	return m.audit.Dropped()
}

// MetricsSnapshot returns a deep copy of the manager's counters.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.Snapshot()
}

func (m *Manager) metricInc(id MetricID) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.Inc(id)
}

/*
====================================
STATE ACCESS
====================================
*/

// Snapshot returns the current state.
func (m *Manager) Snapshot() State {
	if m == nil {
		return State{Status: StatusUnknown}
	}
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state
}

// IsAuthenticated reports whether a user is currently signed in.
func (m *Manager) IsAuthenticated() bool {
	return m.Snapshot().Status == StatusAuthenticated
}

// IsLoading reports whether the manager has not yet settled out of
// [StatusUnknown].
func (m *Manager) IsLoading() bool {
	return m.Snapshot().Status == StatusUnknown
}

// CurrentUser returns the signed-in user, or nil.
func (m *Manager) CurrentUser() *credstore.PublicUser {
	return m.Snapshot().User
}

// Err returns the current user-facing error message, or empty.
func (m *Manager) Err() string {
	return m.Snapshot().Err
}

// OnChange registers fn to run after every state transition, including
// transitions that only touch the error slot. fn runs synchronously on the
// operation's goroutine with the new snapshot; keep it short. The returned
// cancel function removes the listener.
func (m *Manager) OnChange(fn func(State)) (cancel func()) {
	if m == nil || fn == nil {
		return func() {}
	}

	m.listenerMu.Lock()
	if m.listeners == nil {
		m.listeners = make(map[int]func(State))
	}
	id := m.nextListen
	m.nextListen++
	m.listeners[id] = fn
	m.listenerMu.Unlock()

	return func() {
		m.listenerMu.Lock()
		delete(m.listeners, id)
		m.listenerMu.Unlock()
	}
}

// setState publishes next and notifies listeners. Callers hold opMu, so
// listeners observe transitions in operation order.
func (m *Manager) setState(next State) State {
	m.stateMu.Lock()
	m.state = next
	m.stateMu.Unlock()

	m.listenerMu.Lock()
	fns := make([]func(State), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.listenerMu.Unlock()

	for _, fn := range fns {
		fn(next)
	}

	return next
}

/*
====================================
INPUT CANONICALIZATION
====================================
*/

func (m *Manager) canonicalEmail(email string) string {
	email = strings.TrimSpace(email)
	if m.config.Email.Normalize {
		email = strings.ToLower(email)
	}
	return email
}

// avatarURL stamps the configured template with the query-escaped display
// name. Empty template means no avatar.
func (m *Manager) avatarURL(name string) string {
	if m.config.Avatar.URLTemplate == "" {
		return ""
	}
	return fmt.Sprintf(m.config.Avatar.URLTemplate, url.QueryEscape(name))
}
