// Package gorawrstash is a key-value cache that keeps a ledger of its own
// use. Every Store is counted and its argument and returned key are appended
// to a history kept in the same backing store as the values, so the ledger
// outlives the process for as long as the store does.
//
//	c, err := gorawrstash.New(ctx, store.NewRedis("localhost:6379", "", 0))
//	key, err := c.Store(ctx, "foo")
//	s, ok, err := gorawrstash.GetStr(ctx, c, key)
//	err = c.Replay(ctx, gorawrstash.DefaultMethodName, os.Stdout)
//
// The ledger layout and middleware live in package track; backends live in
// package store.
package gorawrstash

import (
	"context"
	"io"

	"github.com/Keksclan/goRawrStash/internal/core"
	"github.com/Keksclan/goRawrStash/store"
	"github.com/Keksclan/goRawrStash/track"
	"github.com/apex/log"
)

// Cache stores scalars under generated keys and tracks its Store calls.
// A Cache adds no locking of its own; it is as safe for concurrent use as
// its Store, with histories of concurrent callers possibly interleaved.
type Cache struct {
	store  store.Store
	cfg    config
	log    log.Interface
	stored track.Func
}

// New flushes s and returns a Cache writing to it. Everything already in s,
// ledger included, is discarded.
func New(ctx context.Context, s store.Store, opts ...Option) (*Cache, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if err := s.Flush(ctx); err != nil {
		return nil, err
	}

	c := &Cache{
		store: s,
		cfg:   cfg,
		log:   cfg.logger.WithField("method", cfg.methodName),
	}
	c.stored = c.Instrument(cfg.methodName, c.set)
	c.log.Debug("store flushed")
	return c, nil
}

// Store writes v under a fresh key and returns the key. v must be a string,
// []byte, integer or float; anything else fails with ErrUnsupportedType and
// leaves the ledger untouched.
func (c *Cache) Store(ctx context.Context, v any) (string, error) {
	raw, err := encode(v)
	if err != nil {
		return "", err
	}
	res, err := c.stored(context.WithValue(ctx, encodedKey{}, raw), v)
	if err != nil {
		return "", err
	}
	key, _ := res.(string)
	return key, nil
}

// encodedKey carries the value Store already encoded to set.
type encodedKey struct{}

// set is the untracked body of Store.
func (c *Cache) set(ctx context.Context, args ...any) (any, error) {
	raw, ok := ctx.Value(encodedKey{}).([]byte)
	if !ok {
		var err error
		if raw, err = encode(args[0]); err != nil {
			return nil, err
		}
	}
	key := c.cfg.newKey()
	if err := c.store.Set(ctx, key, raw); err != nil {
		return nil, err
	}
	c.log.WithField("key", key).Debug("stored value")
	return key, nil
}

// Get returns the value under key, passed through fn when fn is not nil.
// A missing key is not an error: Get returns (nil, nil). Without fn the
// result is the raw []byte.
func (c *Cache) Get(ctx context.Context, key string, fn DecodeFunc) (any, error) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return nil, err
	}
	if fn == nil {
		return raw, nil
	}
	return fn(raw)
}

// GetAs reads key and decodes it with fn. ok is false when key is absent.
func GetAs[T any](ctx context.Context, c *Cache, key string, fn func([]byte) (T, error)) (v T, ok bool, err error) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return v, false, err
	}
	v, err = fn(raw)
	if err != nil {
		return v, true, err
	}
	return v, true, nil
}

// GetStr reads key as text.
func GetStr(ctx context.Context, c *Cache, key string) (string, bool, error) {
	return GetAs(ctx, c, key, DecodeString)
}

// GetInt reads key as a base 10 integer.
func GetInt(ctx context.Context, c *Cache, key string) (int64, bool, error) {
	return GetAs(ctx, c, key, DecodeInt)
}

// GetFloat reads key as a float.
func GetFloat(ctx context.Context, c *Cache, key string) (float64, bool, error) {
	return GetAs(ctx, c, key, DecodeFloat)
}

// MethodName returns the name Store calls are tracked under.
func (c *Cache) MethodName() string {
	return c.cfg.methodName
}

// CallCount returns how many times the method registered under name was
// called, zero if never.
func (c *Cache) CallCount(ctx context.Context, name string) (int64, error) {
	return track.Count(ctx, c.store, name)
}

// History returns the recorded calls of name in call order.
func (c *Cache) History(ctx context.Context, name string) ([]track.Call, error) {
	return track.History(ctx, c.store, name)
}

// Replay writes a readable trace of name's calls to w.
func (c *Cache) Replay(ctx context.Context, name string, w io.Writer) error {
	return track.Replay(ctx, c.store, name, w)
}

// Instrument wraps fn with the same ledger bookkeeping Store gets, under the
// caller-chosen name, plus any tracing, metrics or custom middleware the
// Cache was configured with.
func (c *Cache) Instrument(name string, fn track.Func) track.Func {
	var b core.MiddlewareBuilder
	for _, l := range c.cfg.layers {
		b.Add(l.order, l.build(name))
	}
	b.Add(core.OrderTracked, track.Tracked(c.store, name))
	return track.Wrap(fn, b.Build()...)
}
