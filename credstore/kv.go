package credstore

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the underlying storage cannot be reached
// or rejects an operation. Callers match it with [errors.Is]; the wrapped
// cause is appended for logs.
var ErrUnavailable = errors.New("credential store unavailable")

// ErrDuplicateEmail is returned by [Store.Insert] when a record with the
// same email already exists. Email uniqueness is the store's sole integrity
// constraint.
var ErrDuplicateEmail = errors.New("email already registered")

// KV is the durable key-value boundary the store persists through.
//
// Get reports found=false for absent keys and reserves the error return for
// storage failures. Set overwrites unconditionally. Delete of an absent key
// is a no-op, not an error.
type KV interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
