package store

import (
	"bytes"
	"context"
	"strconv"
	"sync"
)

// Memory is an in-process Store. Scalars and lists live in separate maps and
// mixing them on one key fails with ErrWrongType, mirroring Redis.
type Memory struct {
	mu     sync.Mutex
	values map[string][]byte
	lists  map[string][][]byte
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		values: make(map[string][]byte),
		lists:  make(map[string][][]byte),
	}
}

// Set stores a copy of val under key.
func (m *Memory) Set(_ context.Context, key string, val []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lists, key)
	m.values[key] = bytes.Clone(val)
	return nil
}

// Get retrieves a copy of the value stored under key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lists[key]; ok {
		return nil, false, ErrWrongType
	}
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

// Incr increments the integer stored under key.
func (m *Memory) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lists[key]; ok {
		return 0, ErrWrongType
	}
	var n int64
	if v, ok := m.values[key]; ok {
		parsed, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return 0, ErrNotInteger
		}
		n = parsed
	}
	n++
	m.values[key] = strconv.AppendInt(nil, n, 10)
	return n, nil
}

// Append pushes a copy of val to the tail of the list under key.
func (m *Memory) Append(_ context.Context, key string, val []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return ErrWrongType
	}
	m.lists[key] = append(m.lists[key], bytes.Clone(val))
	return nil
}

// Range returns copies of the list elements between start and stop.
func (m *Memory) Range(_ context.Context, key string, start, stop int64) ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return nil, ErrWrongType
	}
	list := m.lists[key]
	lo, hi, ok := span(int64(len(list)), start, stop)
	if !ok {
		return [][]byte{}, nil
	}
	out := make([][]byte, 0, hi-lo)
	for _, v := range list[lo:hi] {
		out = append(out, bytes.Clone(v))
	}
	return out, nil
}

// Flush removes every key.
func (m *Memory) Flush(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.values)
	clear(m.lists)
	return nil
}
