package credstore

import (
	"context"
	"crypto/sha256"
	"errors"
	"testing"
	"time"
)

func plantChallenge(t *testing.T, store *Store, id string, secret []byte, expiresAt time.Time) {
	t.Helper()

	err := store.CreateChallenge(context.Background(), ResetChallenge{
		ID:         id,
		Email:      "ada@example.com",
		SecretHash: sha256.Sum256(secret),
		ExpiresAt:  expiresAt,
	})
	if err != nil {
		t.Fatalf("CreateChallenge failed: %v", err)
	}
}

func TestConsumeChallengeSuccessDeletes(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()

	secret := []byte("the-secret")
	plantChallenge(t, store, "ch-1", secret, time.Now().Add(time.Minute))

	email, err := store.ConsumeChallenge(ctx, "ch-1", sha256.Sum256(secret), 5)
	if err != nil {
		t.Fatalf("ConsumeChallenge failed: %v", err)
	}
	if email != "ada@example.com" {
		t.Fatalf("unexpected email: %q", email)
	}

	if _, found, _ := kv.Get(ctx, "reset:ch-1"); found {
		t.Fatal("consumed challenge not deleted")
	}
	if _, err := store.ConsumeChallenge(ctx, "ch-1", sha256.Sum256(secret), 5); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("expected ErrChallengeNotFound on replay, got %v", err)
	}
}

func TestConsumeChallengeUnknownID(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.ConsumeChallenge(context.Background(), "missing", sha256.Sum256([]byte("x")), 5)
	if !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("expected ErrChallengeNotFound, got %v", err)
	}
}

func TestConsumeChallengeExpiredDeletes(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()

	secret := []byte("the-secret")
	plantChallenge(t, store, "ch-1", secret, time.Now().Add(-time.Minute))

	if _, err := store.ConsumeChallenge(ctx, "ch-1", sha256.Sum256(secret), 5); !errors.Is(err, ErrChallengeExpired) {
		t.Fatalf("expected ErrChallengeExpired, got %v", err)
	}
	if _, found, _ := kv.Get(ctx, "reset:ch-1"); found {
		t.Fatal("expired challenge not deleted")
	}
}

func TestConsumeChallengeMismatchCountsAttempts(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()

	secret := []byte("the-secret")
	wrong := sha256.Sum256([]byte("wrong"))
	plantChallenge(t, store, "ch-1", secret, time.Now().Add(time.Minute))

	if _, err := store.ConsumeChallenge(ctx, "ch-1", wrong, 3); !errors.Is(err, ErrChallengeMismatch) {
		t.Fatalf("attempt 1: expected ErrChallengeMismatch, got %v", err)
	}
	if _, err := store.ConsumeChallenge(ctx, "ch-1", wrong, 3); !errors.Is(err, ErrChallengeMismatch) {
		t.Fatalf("attempt 2: expected ErrChallengeMismatch, got %v", err)
	}
	if _, err := store.ConsumeChallenge(ctx, "ch-1", wrong, 3); !errors.Is(err, ErrChallengeAttempts) {
		t.Fatalf("attempt 3: expected ErrChallengeAttempts, got %v", err)
	}

	// The burned challenge is gone; even the right secret fails now.
	if _, found, _ := kv.Get(ctx, "reset:ch-1"); found {
		t.Fatal("burned challenge not deleted")
	}
	if _, err := store.ConsumeChallenge(ctx, "ch-1", sha256.Sum256(secret), 3); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("expected ErrChallengeNotFound after burn, got %v", err)
	}
}

func TestConsumeChallengeSurvivesMismatchThenSuccess(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	secret := []byte("the-secret")
	plantChallenge(t, store, "ch-1", secret, time.Now().Add(time.Minute))

	if _, err := store.ConsumeChallenge(ctx, "ch-1", sha256.Sum256([]byte("wrong")), 3); !errors.Is(err, ErrChallengeMismatch) {
		t.Fatalf("expected ErrChallengeMismatch, got %v", err)
	}

	email, err := store.ConsumeChallenge(ctx, "ch-1", sha256.Sum256(secret), 3)
	if err != nil {
		t.Fatalf("genuine secret rejected after one mismatch: %v", err)
	}
	if email != "ada@example.com" {
		t.Fatalf("unexpected email: %q", email)
	}
}

func TestConsumeChallengeDiscardsMalformedRecord(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()

	if err := kv.Set(ctx, "reset:ch-1", "{broken"); err != nil {
		t.Fatalf("seed malformed challenge: %v", err)
	}

	if _, err := store.ConsumeChallenge(ctx, "ch-1", sha256.Sum256([]byte("x")), 5); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("expected ErrChallengeNotFound, got %v", err)
	}
	if _, found, _ := kv.Get(ctx, "reset:ch-1"); found {
		t.Fatal("malformed challenge not deleted")
	}
}
