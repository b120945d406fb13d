// Package track records how often a function is called and what it was called
// with, in a [store.Store] shared with the values the function produces.
//
// Tracking is plain composition: a [Middleware] wraps a [Func] and runs its
// bookkeeping around the call. For a tracked name N the store holds
//
//	N          the call counter
//	N:inputs   rendered arguments, one list entry per call
//	N:outputs  rendered results, index aligned with N:inputs
//
// Nothing here serializes callers. Concurrent calls under one name may
// interleave their history entries.
package track

import "context"

// Func is a tracked operation.
type Func func(ctx context.Context, args ...any) (any, error)

// Middleware transforms a Func, adding behavior before and after it.
type Middleware func(Func) Func

// Chain composes middlewares from left to right, i.e., Chain(A, B)(f) => A(B(f)).
func Chain(mw ...Middleware) Middleware {
	return func(next Func) Func {
		for i := len(mw) - 1; i >= 0; i-- {
			next = mw[i](next)
		}
		return next
	}
}

// Wrap applies the middleware chain to f and returns the wrapped Func.
func Wrap(f Func, mw ...Middleware) Func {
	if len(mw) == 0 {
		return f
	}
	return Chain(mw...)(f)
}

// CounterKey is the store key of the call counter for name.
func CounterKey(name string) string { return name }

// InputsKey is the store key of the input history for name.
func InputsKey(name string) string { return name + ":inputs" }

// OutputsKey is the store key of the output history for name.
func OutputsKey(name string) string { return name + ":outputs" }
