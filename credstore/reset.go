package credstore

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Reset challenge errors. The manager maps these onto its form-facing
// sentinels; the store only reports what happened to the record.
var (
	ErrChallengeNotFound = errors.New("reset challenge not found")
	ErrChallengeExpired  = errors.New("reset challenge expired")
	ErrChallengeMismatch = errors.New("reset secret mismatch")
	ErrChallengeAttempts = errors.New("reset attempts exceeded")
)

// ResetChallenge is one outstanding password-reset request. Only the
// SHA-256 hash of the secret is stored; the plaintext secret exists only
// inside the token handed to the requester.
type ResetChallenge struct {
	ID         string
	Email      string
	SecretHash [32]byte
	ExpiresAt  time.Time
	Attempts   int
}

// storedChallenge is the JSON wire form. The hash travels as base64 so the
// payload stays a flat string map like every other slot.
type storedChallenge struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	SecretHash string    `json:"secret_hash"`
	ExpiresAt  time.Time `json:"expires_at"`
	Attempts   int       `json:"attempts"`
}

func (s *Store) resetKey(id string) string {
	return s.keys.ResetPrefix + id
}

// CreateChallenge persists ch under its ID, replacing any previous
// challenge with the same ID.
func (s *Store) CreateChallenge(ctx context.Context, ch ResetChallenge) error {
	raw, err := json.Marshal(storedChallenge{
		ID:         ch.ID,
		Email:      ch.Email,
		SecretHash: base64.RawStdEncoding.EncodeToString(ch.SecretHash[:]),
		ExpiresAt:  ch.ExpiresAt,
		Attempts:   ch.Attempts,
	})
	if err != nil {
		return fmt.Errorf("encode challenge: %w", err)
	}
	return s.kv.Set(ctx, s.resetKey(ch.ID), string(raw))
}

// ConsumeChallenge verifies secretHash against the stored challenge for id
// and returns the challenged email on success. The challenge is deleted on
// success, on expiry, and when the attempt budget is exhausted; a plain
// mismatch increments the stored attempt counter and leaves the challenge
// in place.
func (s *Store) ConsumeChallenge(ctx context.Context, id string, secretHash [32]byte, maxAttempts int) (string, error) {
	payload, found, err := s.kv.Get(ctx, s.resetKey(id))
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrChallengeNotFound
	}

	ch, err := decodeChallenge(payload)
	if err != nil {
		// An unparsable challenge can never be satisfied. Remove it.
		if delErr := s.kv.Delete(ctx, s.resetKey(id)); delErr != nil {
			return "", delErr
		}
		return "", ErrChallengeNotFound
	}

	if time.Now().After(ch.ExpiresAt) {
		if delErr := s.kv.Delete(ctx, s.resetKey(id)); delErr != nil {
			return "", delErr
		}
		return "", ErrChallengeExpired
	}

	if subtle.ConstantTimeCompare(ch.SecretHash[:], secretHash[:]) != 1 {
		ch.Attempts++
		if maxAttempts > 0 && ch.Attempts >= maxAttempts {
			if delErr := s.kv.Delete(ctx, s.resetKey(id)); delErr != nil {
				return "", delErr
			}
			return "", ErrChallengeAttempts
		}
		if saveErr := s.CreateChallenge(ctx, ch); saveErr != nil {
			return "", saveErr
		}
		return "", ErrChallengeMismatch
	}

	if err := s.kv.Delete(ctx, s.resetKey(id)); err != nil {
		return "", err
	}
	return ch.Email, nil
}

func decodeChallenge(payload string) (ResetChallenge, error) {
	var stored storedChallenge
	if err := json.Unmarshal([]byte(payload), &stored); err != nil {
		return ResetChallenge{}, errMalformed
	}

	rawHash, err := base64.RawStdEncoding.DecodeString(stored.SecretHash)
	if err != nil || len(rawHash) != sha256.Size {
		return ResetChallenge{}, errMalformed
	}

	ch := ResetChallenge{
		ID:        stored.ID,
		Email:     stored.Email,
		ExpiresAt: stored.ExpiresAt,
		Attempts:  stored.Attempts,
	}
	copy(ch.SecretHash[:], rawHash)
	return ch, nil
}
