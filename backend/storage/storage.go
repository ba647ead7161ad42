// Package storage provides the per-client key/value store that stands in for a
// browser's localStorage. Every backend offers the same four operations; Update is
// an atomic read-modify-write on a single key.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnavailable wraps read failures of the underlying backend.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrWriteFailed wraps any failed write. Such a mutation did not persist.
	ErrWriteFailed = errors.New("storage write failed")
	// ErrQuotaExceeded is returned when a value is larger than the configured limit.
	ErrQuotaExceeded = fmt.Errorf("%w: quota exceeded", ErrWriteFailed)
)

// UpdateFunc receives the current value (ok is false when the key is absent) and
// returns the value to store.
type UpdateFunc func(current string, ok bool) (string, error)

type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// ClientKey namespaces key under a client id.
func ClientKey(clientID, key string) string {
	return "client:" + clientID + ":" + key
}

type scoped struct {
	base     Storage
	clientID string
}

// Scoped returns a view of base restricted to one client's keys.
func Scoped(base Storage, clientID string) Storage {
	return &scoped{base: base, clientID: clientID}
}

func (s *scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.base.Get(ctx, ClientKey(s.clientID, key))
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.base.Set(ctx, ClientKey(s.clientID, key), value)
}

func (s *scoped) Remove(ctx context.Context, key string) error {
	return s.base.Remove(ctx, ClientKey(s.clientID, key))
}

func (s *scoped) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return s.base.Update(ctx, ClientKey(s.clientID, key), fn)
}

type quota struct {
	Storage
	maxBytes int
}

// WithQuota rejects writes whose value exceeds maxBytes. A non-positive limit disables the check.
func WithQuota(base Storage, maxBytes int) Storage {
	if maxBytes <= 0 {
		return base
	}
	return &quota{Storage: base, maxBytes: maxBytes}
}

func (q *quota) check(value string) error {
	if len(value) > q.maxBytes {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrQuotaExceeded, len(value), q.maxBytes)
	}
	return nil
}

func (q *quota) Set(ctx context.Context, key, value string) error {
	if err := q.check(value); err != nil {
		return err
	}
	return q.Storage.Set(ctx, key, value)
}

func (q *quota) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return q.Storage.Update(ctx, key, func(current string, ok bool) (string, error) {
		next, err := fn(current, ok)
		if err != nil {
			return "", err
		}
		if err := q.check(next); err != nil {
			return "", err
		}
		return next, nil
	})
}
