package core

import (
	"cmp"
	"slices"

	"github.com/Keksclan/goRawrStash/track"
)

// Execution slots for call-tracking middleware. Lower values run first, i.e.
// wrap the others.
const (
	OrderTracing = 100
	OrderMetrics = 200
	OrderCustom  = 300
	OrderTracked = 400
)

// entry is a single middleware with a deterministic execution order.
type entry struct {
	mw    track.Middleware
	order int
}

// MiddlewareBuilder collects middleware and produces a chain sorted by order.
// Entries sharing an order keep their insertion order.
type MiddlewareBuilder struct {
	entries []entry
}

// Add registers mw at the given order. A nil mw is ignored.
func (b *MiddlewareBuilder) Add(order int, mw track.Middleware) {
	if mw == nil {
		return
	}
	b.entries = append(b.entries, entry{mw: mw, order: order})
}

// Build sorts the collected middleware by order (stable) and returns them
// ready for [track.Chain].
func (b *MiddlewareBuilder) Build() []track.Middleware {
	sorted := slices.Clone(b.entries)
	slices.SortStableFunc(sorted, func(a, c entry) int {
		return cmp.Compare(a.order, c.order)
	})
	out := make([]track.Middleware, 0, len(sorted))
	for _, e := range sorted {
		out = append(out, e.mw)
	}
	return out
}
