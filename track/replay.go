package track

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/Keksclan/goRawrStash/store"
	"github.com/dustin/go-humanize"
)

// Call is one recorded invocation.
type Call struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Count returns the number of calls recorded for name, zero if none.
func Count(ctx context.Context, s store.Store, name string) (int64, error) {
	v, ok, err := s.Get(ctx, CounterKey(name))
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("track: counter %q holds %q: %w", name, v, store.ErrNotInteger)
	}
	return n, nil
}

// History pairs the input and output histories of name by position. When the
// lists differ in length (a call still in flight, or an interrupted one) the
// unmatched tail is dropped.
func History(ctx context.Context, s store.Store, name string) ([]Call, error) {
	ins, err := s.Range(ctx, InputsKey(name), 0, -1)
	if err != nil {
		return nil, err
	}
	outs, err := s.Range(ctx, OutputsKey(name), 0, -1)
	if err != nil {
		return nil, err
	}
	n := min(len(ins), len(outs))
	calls := make([]Call, n)
	for i := range n {
		calls[i] = Call{Input: string(ins[i]), Output: string(outs[i])}
	}
	return calls, nil
}

// Replay writes a readable trace of name's history to w:
//
//	Cache.Store was called 2 times:
//	Cache.Store(*("foo",)) -> 0b1c...
//	Cache.Store(*(42,)) -> 7f3e...
func Replay(ctx context.Context, s store.Store, name string, w io.Writer) error {
	n, err := Count(ctx, s, name)
	if err != nil {
		return err
	}
	calls, err := History(ctx, s, name)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s was called %s %s:\n", name, humanize.Comma(n), plural(n)); err != nil {
		return err
	}
	for _, c := range calls {
		if _, err := fmt.Fprintln(w, Line(name, c)); err != nil {
			return err
		}
	}
	return nil
}

// Line renders a single call the way Replay prints it.
func Line(name string, c Call) string {
	return fmt.Sprintf("%s(*%s) -> %s", name, c.Input, c.Output)
}

func plural(n int64) string {
	if n == 1 {
		return "time"
	}
	return "times"
}
