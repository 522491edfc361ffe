// Package kvstore holds the persistent key/value store shared by every tab.
package kvstore

import (
	"context"
	"errors"
)

var (
	// ErrQuotaExceeded is returned when a write would push the store over its size quota
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	// ErrUnavailable is returned when the backend cannot be reached
	ErrUnavailable = errors.New("storage unavailable")
	// ErrEmptyKey is returned for writes with an empty key
	ErrEmptyKey = errors.New("storage key must not be empty")
)

// Store is a string-keyed store of string values. Writes are durable once they return
// without error. There is no atomicity across keys.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Reason returns the metrics label for a store error
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "other"
	}
}

func entrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}
