// Package store defines the key-value contract the instrumented cache is
// built on, plus a Redis backend, an in-process backend and a ristretto
// read-through layer.
package store

import (
	"context"
	"errors"
)

var (
	// ErrWrongType is returned when a list operation targets a scalar key or
	// the other way around.
	ErrWrongType = errors.New("store: operation against a key holding the wrong kind of value")

	// ErrNotInteger is returned by Incr when the existing value does not parse
	// as an integer.
	ErrNotInteger = errors.New("store: value is not an integer")
)

// Store is the set of primitive operations consumed by the cache and the call
// tracking middleware. Each primitive is atomic on its own; nothing is atomic
// across calls.
type Store interface {
	// Set stores val under key, replacing any scalar already there.
	Set(ctx context.Context, key string, val []byte) error

	// Get retrieves a value by key. The boolean is false on a miss, which is
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Incr increments the integer under key, starting from zero, and returns
	// the new value.
	Incr(ctx context.Context, key string) (int64, error)

	// Append pushes val to the tail of the list under key.
	Append(ctx context.Context, key string, val []byte) error

	// Range returns list elements between start and stop inclusive. Negative
	// indices count from the end, so (0, -1) is the whole list.
	Range(ctx context.Context, key string, start, stop int64) ([][]byte, error)

	// Flush removes every key.
	Flush(ctx context.Context) error
}

// span converts LRANGE style indices into a half open [lo, hi) window over a
// list of length n. ok is false when the window is empty.
func span(n, start, stop int64) (lo, hi int64, ok bool) {
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	start = max(start, 0)
	stop = min(stop, n-1)
	if start > stop || start >= n {
		return 0, 0, false
	}
	return start, stop + 1, true
}
