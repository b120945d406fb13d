package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/Keksclan/goRawrStash/retry"
	"github.com/redis/go-redis/v9"
)

// Redis is a Store backed by a Redis server. Misses are reported through the
// boolean of Get; connectivity failures are returned to the caller.
type Redis struct {
	rdb   redis.UniversalClient
	retry retry.Config
}

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithRetry retries idempotent operations (Get, Set, Range, Flush) according
// to cfg. Incr and Append are never retried since a lost reply could double
// count. When cfg.Retryable is nil, IsTransient is used.
func WithRetry(cfg retry.Config) RedisOption {
	return func(r *Redis) {
		if cfg.Retryable == nil {
			cfg.Retryable = IsTransient
		}
		r.retry = cfg
	}
}

// NewRedis connects to a single Redis server.
func NewRedis(addr, password string, db int, opts ...RedisOption) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisFromClient(rdb, opts...)
}

// NewRedisFromClient wraps an existing client. Close closes it.
func NewRedisFromClient(rdb redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{rdb: rdb}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Set stores val under key without expiration.
func (r *Redis) Set(ctx context.Context, key string, val []byte) error {
	return retry.Run(ctx, r.retry, func(ctx context.Context) error {
		return translate(r.rdb.Set(ctx, key, val, 0).Err())
	})
}

// Get retrieves a value by key. A missing key yields (nil, false, nil).
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var found bool
	val, err := retry.Do(ctx, r.retry, func(ctx context.Context) ([]byte, error) {
		v, err := r.rdb.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			found = false
			return nil, nil
		}
		found = err == nil
		return v, translate(err)
	})
	if err != nil || !found {
		return nil, false, err
	}
	return val, true, nil
}

// Incr increments the counter under key.
func (r *Redis) Incr(ctx context.Context, key string) (int64, error) {
	n, err := r.rdb.Incr(ctx, key).Result()
	return n, translate(err)
}

// Append pushes val to the tail of the list under key.
func (r *Redis) Append(ctx context.Context, key string, val []byte) error {
	return translate(r.rdb.RPush(ctx, key, val).Err())
}

// Range returns the list elements between start and stop inclusive.
func (r *Redis) Range(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	vals, err := retry.Do(ctx, r.retry, func(ctx context.Context) ([]string, error) {
		vals, err := r.rdb.LRange(ctx, key, start, stop).Result()
		return vals, translate(err)
	})
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out, nil
}

// Flush empties the selected database.
func (r *Redis) Flush(ctx context.Context) error {
	return retry.Run(ctx, r.retry, func(ctx context.Context) error {
		return translate(r.rdb.FlushDB(ctx).Err())
	})
}

// Ping checks the Redis connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Close closes the underlying Redis client.
func (r *Redis) Close() error {
	return r.rdb.Close()
}

// translate maps Redis reply errors onto the package sentinels.
func translate(err error) error {
	var rerr redis.Error
	if err == nil || !errors.As(err, &rerr) {
		return err
	}
	msg := rerr.Error()
	switch {
	case strings.HasPrefix(msg, "WRONGTYPE"):
		return fmt.Errorf("%w: %s", ErrWrongType, msg)
	case strings.Contains(msg, "not an integer"):
		return fmt.Errorf("%w: %s", ErrNotInteger, msg)
	}
	return err
}

// IsTransient reports whether err looks like a connectivity failure that may
// succeed on a later attempt.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr)
}
