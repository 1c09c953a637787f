package credstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrCorruptSession is returned by [Store.LoadSession] after it discards an
// unparsable session payload. The slot has already been cleared when this
// error is seen; callers treat it as "no session" and may record that a
// recovery happened.
var ErrCorruptSession = errors.New("corrupt session payload discarded")

// ErrUserNotFound is returned by operations that require an existing
// registry entry, such as [Store.UpdateSecret].
var ErrUserNotFound = errors.New("user not found")

// Keys names the KV slots a [Store] persists through.
type Keys struct {
	// Users holds the full registry as a JSON array of records.
	Users string
	// Session holds the current session as a JSON public user, or is
	// absent when nobody is logged in.
	Session string
	// ResetPrefix prefixes one key per outstanding password-reset
	// challenge.
	ResetPrefix string
}

// Store is the typed credential layer over a [KV]: a user registry keyed by
// email, a single current-session slot, and outstanding reset challenges.
//
// Store has exactly one logical writer. Methods are safe for concurrent
// calls only to the degree the underlying KV is; they do not implement
// read-modify-write transactions.
type Store struct {
	kv   KV
	keys Keys
}

// NewStore creates a store over kv using the given key names.
func NewStore(kv KV, keys Keys) *Store {
	return &Store{
		kv:   kv,
		keys: keys,
	}
}

// loadRegistry reads and decodes the user registry. An absent or malformed
// registry yields an empty slice: the registry is demo data, and refusing
// every future registration over one bad payload is worse than starting
// fresh.
func (s *Store) loadRegistry(ctx context.Context) ([]UserRecord, error) {
	payload, found, err := s.kv.Get(ctx, s.keys.Users)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	users, err := decodeRegistry(payload)
	if err != nil {
		return nil, nil
	}
	return users, nil
}

func (s *Store) saveRegistry(ctx context.Context, users []UserRecord) error {
	payload, err := encodeRegistry(users)
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	return s.kv.Set(ctx, s.keys.Users, payload)
}

// FindByEmail returns the full record for email, matched case-insensitively
// after trimming, reporting found=false when no record matches.
func (s *Store) FindByEmail(ctx context.Context, email string) (UserRecord, bool, error) {
	users, err := s.loadRegistry(ctx)
	if err != nil {
		return UserRecord{}, false, err
	}

	for _, u := range users {
		if emailsEqual(u.Email, email) {
			return u, true, nil
		}
	}
	return UserRecord{}, false, nil
}

// Insert appends rec to the registry. It returns [ErrDuplicateEmail] if a
// record with the same email already exists, and persists nothing in that
// case.
func (s *Store) Insert(ctx context.Context, rec UserRecord) error {
	users, err := s.loadRegistry(ctx)
	if err != nil {
		return err
	}

	for _, u := range users {
		if emailsEqual(u.Email, rec.Email) {
			return ErrDuplicateEmail
		}
	}

	return s.saveRegistry(ctx, append(users, rec))
}

// UpdateSecret replaces the stored secret for email. It returns
// [ErrUserNotFound] when no registry entry matches.
func (s *Store) UpdateSecret(ctx context.Context, email, secret string) error {
	users, err := s.loadRegistry(ctx)
	if err != nil {
		return err
	}

	for i := range users {
		if emailsEqual(users[i].Email, email) {
			users[i].Secret = secret
			return s.saveRegistry(ctx, users)
		}
	}
	return ErrUserNotFound
}

// Count reports the number of registry entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	users, err := s.loadRegistry(ctx)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

// LoadSession reads the current-session slot. It returns nil with a nil
// error when the slot is empty. A malformed payload is deleted before
// returning [ErrCorruptSession], so the next load starts clean.
func (s *Store) LoadSession(ctx context.Context) (*PublicUser, error) {
	payload, found, err := s.kv.Get(ctx, s.keys.Session)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	user, err := decodeSession(payload)
	if err != nil {
		if delErr := s.kv.Delete(ctx, s.keys.Session); delErr != nil {
			return nil, delErr
		}
		return nil, ErrCorruptSession
	}
	return &user, nil
}

// SaveSession writes user into the current-session slot, replacing any
// previous session.
func (s *Store) SaveSession(ctx context.Context, user PublicUser) error {
	payload, err := encodeSession(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.kv.Set(ctx, s.keys.Session, payload)
}

// ClearSession empties the current-session slot. Clearing an already empty
// slot succeeds.
func (s *Store) ClearSession(ctx context.Context) error {
	return s.kv.Delete(ctx, s.keys.Session)
}

// emailsEqual compares two addresses the way the registry is keyed:
// trimmed and case-insensitive.
func emailsEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
