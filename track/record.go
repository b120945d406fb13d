package track

import (
	"context"

	"github.com/Keksclan/goRawrStash/store"
)

// CountCalls increments the counter for name before every call. A failing
// increment aborts the call.
func CountCalls(s store.Store, name string) Middleware {
	key := CounterKey(name)
	return func(next Func) Func {
		return func(ctx context.Context, args ...any) (any, error) {
			if _, err := s.Incr(ctx, key); err != nil {
				return nil, err
			}
			return next(ctx, args...)
		}
	}
}

// CallHistory appends the rendered arguments to the input history before the
// call and the rendered result to the output history after it. A call that
// fails still gets an output entry holding its error so the two lists stay
// aligned.
func CallHistory(s store.Store, name string) Middleware {
	in, out := InputsKey(name), OutputsKey(name)
	return func(next Func) Func {
		return func(ctx context.Context, args ...any) (any, error) {
			if err := s.Append(ctx, in, []byte(FormatArgs(args))); err != nil {
				return nil, err
			}
			res, err := next(ctx, args...)
			rendered := FormatOutput(res)
			if err != nil {
				rendered = FormatError(err)
			}
			if aerr := s.Append(ctx, out, []byte(rendered)); aerr != nil && err == nil {
				return res, aerr
			}
			return res, err
		}
	}
}

// Tracked returns the counting and history middlewares for name, counter
// first, in the order the store should see them.
func Tracked(s store.Store, name string) Middleware {
	return Chain(CountCalls(s, name), CallHistory(s, name))
}
