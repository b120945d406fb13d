package gorawrstash

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Keksclan/goRawrStash/store"
	"github.com/Keksclan/goRawrStash/track"
)

func mustNew(t *testing.T, s store.Store, opts ...Option) *Cache {
	t.Helper()
	c, err := New(t.Context(), s, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// sequentialKeys returns a key generator yielding k1, k2, ...
func sequentialKeys() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("k%d", n)
	}
}

func TestScenario_StoreGetCountReplay(t *testing.T) {
	s := store.NewMemory()
	ctx := t.Context()

	// Leftovers must not survive construction.
	_ = s.Set(ctx, "stale", []byte("x"))

	c := mustNew(t, s, WithKeyFunc(sequentialKeys()))
	if _, ok, _ := s.Get(ctx, "stale"); ok {
		t.Fatal("New must flush the store")
	}

	k1, err := c.Store(ctx, "foo")
	if err != nil {
		t.Fatalf("Store(foo): %v", err)
	}
	k2, err := c.Store(ctx, 42)
	if err != nil {
		t.Fatalf("Store(42): %v", err)
	}

	n, err := c.CallCount(ctx, DefaultMethodName)
	if err != nil {
		t.Fatalf("CallCount: %v", err)
	}
	if n != 2 {
		t.Fatalf("got count %d, want 2", n)
	}

	raw, err := c.Get(ctx, k1, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(raw.([]byte), []byte("foo")) {
		t.Fatalf("got %q, want %q", raw, "foo")
	}

	var buf bytes.Buffer
	if err := c.Replay(ctx, DefaultMethodName, &buf); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	want := "Cache.Store was called 2 times:\n" +
		"Cache.Store(*(\"foo\",)) -> " + k1 + "\n" +
		"Cache.Store(*(42,)) -> " + k2 + "\n"
	if got := buf.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestStore_GeneratesUniqueKeys(t *testing.T) {
	c := mustNew(t, store.NewMemory())
	ctx := t.Context()

	seen := make(map[string]bool)
	for i := range 100 {
		k, err := c.Store(ctx, i)
		if err != nil {
			t.Fatalf("Store: %v", err)
		}
		if seen[k] {
			t.Fatalf("duplicate key %q", k)
		}
		seen[k] = true
	}
	if n, _ := c.CallCount(ctx, DefaultMethodName); n != 100 {
		t.Fatalf("got count %d, want 100", n)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	c := mustNew(t, store.NewMemory())
	ctx := t.Context()

	tests := []struct {
		in   any
		want string
	}{
		{"text", "text"},
		{[]byte{0xff, 0x00}, "\xff\x00"},
		{42, "42"},
		{int8(-8), "-8"},
		{uint64(18446744073709551615), "18446744073709551615"},
		{3.25, "3.25"},
		{float32(0.1), "0.1"},
		{"", ""},
	}
	for _, tt := range tests {
		k, err := c.Store(ctx, tt.in)
		if err != nil {
			t.Fatalf("Store(%v): %v", tt.in, err)
		}
		got, err := c.Get(ctx, k, nil)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if string(got.([]byte)) != tt.want {
			t.Fatalf("Store(%v) read back %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStore_RejectsUnsupportedTypes(t *testing.T) {
	c := mustNew(t, store.NewMemory())
	ctx := t.Context()

	for _, v := range []any{nil, true, struct{}{}, []string{"a"}, map[string]int{}} {
		if _, err := c.Store(ctx, v); !errors.Is(err, ErrUnsupportedType) {
			t.Fatalf("Store(%#v): expected ErrUnsupportedType, got %v", v, err)
		}
	}
	if n, _ := c.CallCount(ctx, DefaultMethodName); n != 0 {
		t.Fatalf("rejected values must not be counted, got %d", n)
	}
	if h, _ := c.History(ctx, DefaultMethodName); len(h) != 0 {
		t.Fatalf("rejected values must not be recorded, got %d entries", len(h))
	}
}

func TestGet_MissingKey(t *testing.T) {
	c := mustNew(t, store.NewMemory())
	ctx := t.Context()

	v, err := c.Get(ctx, "never-written", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != nil {
		t.Fatalf("expected nil, got %v", v)
	}

	v, err = c.Get(ctx, "never-written", Decoder(DecodeInt))
	if err != nil || v != nil {
		t.Fatalf("decoder must not run on a miss: got %v, %v", v, err)
	}

	if _, ok, err := GetStr(ctx, c, "never-written"); ok || err != nil {
		t.Fatalf("GetStr: ok=%v err=%v", ok, err)
	}
}

func TestGet_Decoders(t *testing.T) {
	c := mustNew(t, store.NewMemory())
	ctx := t.Context()

	ks, _ := c.Store(ctx, "hello")
	ki, _ := c.Store(ctx, 1234)
	kf, _ := c.Store(ctx, 2.5)

	if v, err := c.Get(ctx, ks, Decoder(DecodeString)); err != nil || v != "hello" {
		t.Fatalf("string: got %v, %v", v, err)
	}
	if v, err := c.Get(ctx, ki, Decoder(DecodeInt)); err != nil || v != int64(1234) {
		t.Fatalf("int: got %v, %v", v, err)
	}
	if v, err := c.Get(ctx, kf, Decoder(DecodeFloat)); err != nil || v != 2.5 {
		t.Fatalf("float: got %v, %v", v, err)
	}

	upper := func(b []byte) (any, error) { return strings.ToUpper(string(b)), nil }
	if v, _ := c.Get(ctx, ks, upper); v != "HELLO" {
		t.Fatalf("custom decoder: got %v", v)
	}

	if s, ok, err := GetStr(ctx, c, ks); !ok || err != nil || s != "hello" {
		t.Fatalf("GetStr: %q %v %v", s, ok, err)
	}
	if n, ok, err := GetInt(ctx, c, ki); !ok || err != nil || n != 1234 {
		t.Fatalf("GetInt: %d %v %v", n, ok, err)
	}
	if f, ok, err := GetFloat(ctx, c, kf); !ok || err != nil || f != 2.5 {
		t.Fatalf("GetFloat: %v %v %v", f, ok, err)
	}

	if _, ok, err := GetInt(ctx, c, ks); !ok || !errors.Is(err, ErrDecode) {
		t.Fatalf("GetInt on text: ok=%v err=%v", ok, err)
	}
}

func TestHistory_MatchesCallOrder(t *testing.T) {
	c := mustNew(t, store.NewMemory())
	ctx := t.Context()

	inputs := []any{"a", 1, 2.5, []byte("b")}
	var keys []string
	for _, in := range inputs {
		k, err := c.Store(ctx, in)
		if err != nil {
			t.Fatalf("Store: %v", err)
		}
		keys = append(keys, k)
	}

	hist, err := c.History(ctx, DefaultMethodName)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != len(inputs) {
		t.Fatalf("got %d entries, want %d", len(hist), len(inputs))
	}
	for i, h := range hist {
		if h.Input != track.FormatArgs([]any{inputs[i]}) {
			t.Fatalf("entry %d input %q", i, h.Input)
		}
		if h.Output != keys[i] {
			t.Fatalf("entry %d output %q, want %q", i, h.Output, keys[i])
		}
	}

	var buf bytes.Buffer
	_ = c.Replay(ctx, DefaultMethodName, &buf)
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines)-1 != len(inputs) {
		t.Fatalf("replay printed %d call lines, want %d", len(lines)-1, len(inputs))
	}
}

func TestWithMethodName_SeparatesLedgers(t *testing.T) {
	s := store.NewMemory()
	ctx := t.Context()
	c := mustNew(t, s, WithMethodName("Students.Store"))

	if _, err := c.Store(ctx, "x"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if c.MethodName() != "Students.Store" {
		t.Fatalf("MethodName() = %q", c.MethodName())
	}
	if n, _ := c.CallCount(ctx, "Students.Store"); n != 1 {
		t.Fatalf("got %d, want 1", n)
	}
	if n, _ := c.CallCount(ctx, DefaultMethodName); n != 0 {
		t.Fatalf("default name must be unused, got %d", n)
	}
}

func TestInstrument_TracksArbitraryFunc(t *testing.T) {
	c := mustNew(t, store.NewMemory())
	ctx := t.Context()

	add := c.Instrument("Calc.Add", func(_ context.Context, args ...any) (any, error) {
		return args[0].(int) + args[1].(int), nil
	})
	_, _ = add(ctx, 1, 2)
	_, _ = add(ctx, 3, 4)

	var buf bytes.Buffer
	if err := c.Replay(ctx, "Calc.Add", &buf); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	want := "Calc.Add was called 2 times:\n" +
		"Calc.Add(*(1, 2)) -> 3\n" +
		"Calc.Add(*(3, 4)) -> 7\n"
	if got := buf.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestWithMiddleware_RunsOutsideBookkeeping(t *testing.T) {
	s := store.NewMemory()
	ctx := t.Context()

	var seenCount []int64
	observe := func(next track.Func) track.Func {
		return func(ctx context.Context, args ...any) (any, error) {
			// The counter has not been bumped yet for this call.
			n, _ := track.Count(ctx, s, DefaultMethodName)
			seenCount = append(seenCount, n)
			return next(ctx, args...)
		}
	}
	c := mustNew(t, s, WithMiddleware(observe))

	_, _ = c.Store(ctx, "a")
	_, _ = c.Store(ctx, "b")

	if len(seenCount) != 2 || seenCount[0] != 0 || seenCount[1] != 1 {
		t.Fatalf("unexpected observed counts %v", seenCount)
	}
}

// failingStore fails every Set after construction.
type failingStore struct {
	*store.Memory
}

var errDown = errors.New("store unreachable")

func (failingStore) Set(context.Context, string, []byte) error { return errDown }

func TestStore_PropagatesStoreFailure(t *testing.T) {
	c := mustNew(t, failingStore{store.NewMemory()})
	ctx := t.Context()

	if _, err := c.Store(ctx, "x"); !errors.Is(err, errDown) {
		t.Fatalf("expected errDown, got %v", err)
	}
	hist, _ := c.History(ctx, DefaultMethodName)
	if len(hist) != 1 || hist[0].Output != "error: store unreachable" {
		t.Fatalf("unexpected history %+v", hist)
	}
}

func TestNew_FlushFailure(t *testing.T) {
	_, err := New(t.Context(), flushFails{store.NewMemory()})
	if !errors.Is(err, errDown) {
		t.Fatalf("expected errDown, got %v", err)
	}
}

type flushFails struct {
	*store.Memory
}

func (flushFails) Flush(context.Context) error { return errDown }

func TestCache_OverTieredStore(t *testing.T) {
	tiered, err := store.NewTiered(store.NewMemory(), 100)
	if err != nil {
		t.Fatalf("NewTiered: %v", err)
	}
	t.Cleanup(tiered.Close)

	c := mustNew(t, tiered)
	ctx := t.Context()

	k, _ := c.Store(ctx, "cached")
	for range 3 {
		if s, ok, _ := GetStr(ctx, c, k); !ok || s != "cached" {
			t.Fatalf("got %q ok=%v", s, ok)
		}
	}
	_, _ = c.Store(ctx, "second")
	if n, _ := c.CallCount(ctx, DefaultMethodName); n != 2 {
		t.Fatalf("got %d, want 2", n)
	}
}

func TestCache_SharedTieredStoreCountsAllInstances(t *testing.T) {
	shared := store.NewMemory()
	newTiered := func() *store.Tiered {
		tc, err := store.NewTiered(shared, 100)
		if err != nil {
			t.Fatalf("NewTiered: %v", err)
		}
		t.Cleanup(tc.Close)
		return tc
	}
	a := mustNew(t, newTiered())
	b := mustNew(t, newTiered())
	ctx := t.Context()

	if _, err := a.Store(ctx, "from a"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if n, _ := a.CallCount(ctx, DefaultMethodName); n != 1 {
		t.Fatalf("got %d, want 1", n)
	}
	if _, err := b.Store(ctx, "from b"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	n, err := a.CallCount(ctx, DefaultMethodName)
	if err != nil {
		t.Fatalf("CallCount: %v", err)
	}
	calls, err := a.History(ctx, DefaultMethodName)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if n != 2 || len(calls) != 2 {
		t.Fatalf("count=%d history=%d, want 2 and 2", n, len(calls))
	}
}

func TestStore_WritesValueEncodedBeforeMiddleware(t *testing.T) {
	rewrite := func(next track.Func) track.Func {
		return func(ctx context.Context, _ ...any) (any, error) {
			return next(ctx, "rewritten")
		}
	}
	c := mustNew(t, store.NewMemory(), WithMiddleware(rewrite))
	ctx := t.Context()

	k, err := c.Store(ctx, 42)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if n, ok, err := GetInt(ctx, c, k); err != nil || !ok || n != 42 {
		t.Fatalf("got %d ok=%v err=%v, want 42", n, ok, err)
	}
}
