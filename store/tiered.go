package store

import (
	"bytes"
	"context"

	"github.com/dgraph-io/ristretto/v2"
)

// Tiered puts an in-process ristretto cache in front of another Store. L1 only
// holds scalars written through this Tiered's Set; everything else, counters
// included, is read from the backing store on every Get so several instances
// can share one backend.
//
// Values stored under freshly generated keys never change afterwards, which is
// what makes caching them safe. Callers that overwrite such keys through
// another client will read stale values until Flush.
type Tiered struct {
	l1   *ristretto.Cache[string, []byte]
	next Store
}

// NewTiered wraps next with an L1 cache holding at most maxEntries values.
func NewTiered(next Store, maxEntries int64) (*Tiered, error) {
	rc, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters:        maxEntries * 10,
		MaxCost:            maxEntries,
		BufferItems:        64,
		IgnoreInternalCost: true, // cost counts entries, not bytes
	})
	if err != nil {
		return nil, err
	}
	return &Tiered{l1: rc, next: next}, nil
}

// Get checks L1, then the backing store. Reads from the backing store are not
// cached.
func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if v, ok := t.l1.Get(key); ok {
		return bytes.Clone(v), true, nil
	}
	return t.next.Get(ctx, key)
}

// Set writes through to the backing store, then L1.
func (t *Tiered) Set(ctx context.Context, key string, val []byte) error {
	if err := t.next.Set(ctx, key, val); err != nil {
		return err
	}
	t.remember(key, val)
	return nil
}

// Incr bypasses L1. A scalar cached under key is dropped.
func (t *Tiered) Incr(ctx context.Context, key string) (int64, error) {
	t.l1.Del(key)
	return t.next.Incr(ctx, key)
}

// Append bypasses L1.
func (t *Tiered) Append(ctx context.Context, key string, val []byte) error {
	return t.next.Append(ctx, key, val)
}

// Range bypasses L1.
func (t *Tiered) Range(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	return t.next.Range(ctx, key, start, stop)
}

// Flush empties the backing store and L1.
func (t *Tiered) Flush(ctx context.Context) error {
	if err := t.next.Flush(ctx); err != nil {
		return err
	}
	t.l1.Clear()
	return nil
}

// Close releases the L1 cache. The backing store is left open.
func (t *Tiered) Close() {
	t.l1.Close()
}

func (t *Tiered) remember(key string, val []byte) {
	t.l1.Set(key, bytes.Clone(val), 1)
	t.l1.Wait()
}
