package authstate

import (
	"context"
	"fmt"
	"testing"

	"github.com/emberlock/authstate/credstore"
)

func newTestManager(t *testing.T, mutate func(*Config)) *Manager {
	t.Helper()

	kv := credstore.NewMemoryKV()
	return newTestManagerWithKV(t, kv, mutate)
}

func newTestManagerWithKV(t *testing.T, kv credstore.KV, mutate func(*Config)) *Manager {
	t.Helper()

	cfg := defaultConfig()
	cfg.PasswordReset.Enabled = true
	if mutate != nil {
		mutate(&cfg)
	}

	m, err := New().
		WithConfig(cfg).
		WithKV(kv).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(m.Close)

	return m
}

// failingKV refuses every operation, simulating an unreachable store.
type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, fmt.Errorf("%w: connection refused", credstore.ErrUnavailable)
}

func (failingKV) Set(context.Context, string, string) error {
	return fmt.Errorf("%w: connection refused", credstore.ErrUnavailable)
}

func (failingKV) Delete(context.Context, string) error {
	return fmt.Errorf("%w: connection refused", credstore.ErrUnavailable)
}

func registerTestUser(t *testing.T, m *Manager, name, email, password string) State {
	t.Helper()

	state := m.Register(context.Background(), RegisterInput{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if state.Status != StatusAuthenticated {
		t.Fatalf("expected authenticated after register, got %v (err %q)", state.Status, state.Err)
	}
	return state
}

func TestManagerStartsUnknown(t *testing.T) {
	m := newTestManager(t, nil)

	if !m.IsLoading() {
		t.Fatal("expected manager to start loading")
	}
	if got := m.Snapshot(); got.Status != StatusUnknown || got.User != nil || got.Err != "" {
		t.Fatalf("unexpected initial state: %+v", got)
	}
}

func TestRestoreEmptySettlesUnauthenticated(t *testing.T) {
	m := newTestManager(t, nil)

	state := m.Restore(context.Background())
	if state.Status != StatusUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", state.Status)
	}
	if state.User != nil || state.Err != "" {
		t.Fatalf("expected clean state, got %+v", state)
	}
	if m.IsLoading() {
		t.Fatal("manager still loading after restore")
	}
}

func TestRestoreFindsPersistedSession(t *testing.T) {
	kv := credstore.NewMemoryKV()

	first := newTestManagerWithKV(t, kv, nil)
	registerTestUser(t, first, "Ada", "ada@example.com", "hunter2")

	// A second manager over the same KV models a process restart.
	second := newTestManagerWithKV(t, kv, nil)
	state := second.Restore(context.Background())

	if state.Status != StatusAuthenticated {
		t.Fatalf("expected authenticated after restore, got %v", state.Status)
	}
	if state.User == nil || state.User.Email != "ada@example.com" {
		t.Fatalf("unexpected restored user: %+v", state.User)
	}
}

func TestRestoreDiscardsCorruptSession(t *testing.T) {
	kv := credstore.NewMemoryKV()
	if err := kv.Set(context.Background(), "session", "{not json"); err != nil {
		t.Fatalf("seed corrupt session: %v", err)
	}

	m := newTestManagerWithKV(t, kv, func(cfg *Config) {
		cfg.Metrics.Enabled = true
	})

	state := m.Restore(context.Background())
	if state.Status != StatusUnauthenticated || state.Err != "" {
		t.Fatalf("expected silent unauthenticated settle, got %+v", state)
	}

	// The corrupt payload must be gone so the next restore starts clean.
	if _, found, _ := kv.Get(context.Background(), "session"); found {
		t.Fatal("corrupt session payload was not discarded")
	}
	if got := m.MetricsSnapshot().Counters[MetricCorruptSessionRecovered]; got != 1 {
		t.Fatalf("expected 1 corrupt session recovery, got %d", got)
	}
}

func TestRestoreStoreFailureSettlesUnauthenticated(t *testing.T) {
	m := newTestManagerWithKV(t, failingKV{}, nil)

	state := m.Restore(context.Background())
	if state.Status != StatusUnauthenticated || state.Err != "" {
		t.Fatalf("expected silent unauthenticated settle, got %+v", state)
	}
}

func TestLogoutClearsSessionAndState(t *testing.T) {
	kv := credstore.NewMemoryKV()
	m := newTestManagerWithKV(t, kv, nil)
	registerTestUser(t, m, "Ada", "ada@example.com", "hunter2")

	state := m.Logout(context.Background())
	if state.Status != StatusUnauthenticated || state.User != nil {
		t.Fatalf("expected unauthenticated after logout, got %+v", state)
	}

	if _, found, _ := kv.Get(context.Background(), "session"); found {
		t.Fatal("session slot not cleared on logout")
	}
}

func TestLogoutWhenAlreadySignedOut(t *testing.T) {
	m := newTestManager(t, nil)
	m.Restore(context.Background())

	state := m.Logout(context.Background())
	if state.Status != StatusUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", state.Status)
	}
}

func TestClearErrorKeepsAuthState(t *testing.T) {
	m := newTestManager(t, nil)
	registerTestUser(t, m, "Ada", "ada@example.com", "hunter2")

	// Duplicate registration sets the error without signing Ada out.
	state := m.Register(context.Background(), RegisterInput{
		Name:     "Ada Again",
		Email:    "ada@example.com",
		Password: "other",
	})
	if state.Err != MsgUserExists {
		t.Fatalf("expected %q, got %q", MsgUserExists, state.Err)
	}
	if state.Status != StatusAuthenticated {
		t.Fatalf("register failure changed auth state: %v", state.Status)
	}

	cleared := m.ClearError()
	if cleared.Err != "" {
		t.Fatalf("error not cleared: %q", cleared.Err)
	}
	if cleared.Status != StatusAuthenticated || cleared.User == nil {
		t.Fatalf("clear error disturbed auth state: %+v", cleared)
	}
}

func TestClearErrorNoopWhenClean(t *testing.T) {
	m := newTestManager(t, nil)
	m.Restore(context.Background())

	var notifications int
	cancel := m.OnChange(func(State) { notifications++ })
	defer cancel()

	m.ClearError()
	if notifications != 0 {
		t.Fatalf("clean ClearError should not notify, got %d notifications", notifications)
	}
}

func TestOnChangeObservesTransitions(t *testing.T) {
	m := newTestManager(t, nil)

	var seen []Status
	cancel := m.OnChange(func(s State) { seen = append(seen, s.Status) })

	m.Restore(context.Background())
	registerTestUser(t, m, "Ada", "ada@example.com", "hunter2")
	m.Logout(context.Background())

	want := []Status{StatusUnauthenticated, StatusAuthenticated, StatusUnauthenticated}
	if len(seen) != len(want) {
		t.Fatalf("expected %d notifications, got %d (%v)", len(want), len(seen), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("notification %d: expected %v, got %v", i, want[i], seen[i])
		}
	}

	cancel()
	m.Logout(context.Background())
	if len(seen) != len(want) {
		t.Fatal("listener notified after cancel")
	}
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		StatusUnknown:         "unknown",
		StatusAuthenticated:   "authenticated",
		StatusUnauthenticated: "unauthenticated",
		Status(99):            "invalid",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Fatalf("Status(%d).String() = %q, want %q", status, got, want)
		}
	}
}

func TestNilManagerIsInert(t *testing.T) {
	var m *Manager

	if got := m.Snapshot(); got.Status != StatusUnknown {
		t.Fatalf("nil snapshot: %+v", got)
	}
	if m.IsAuthenticated() {
		t.Fatal("nil manager reports authenticated")
	}
	if got := m.Login(context.Background(), LoginInput{}); got.Status != StatusUnknown {
		t.Fatalf("nil login: %+v", got)
	}
	m.Close()
	if m.AuditDropped() != 0 {
		t.Fatal("nil AuditDropped not zero")
	}
}
