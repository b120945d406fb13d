// Package metrics exports Prometheus counters and latencies for tracked calls.
// The store keeps the authoritative call count; these series mirror it per
// process for scraping.
package metrics

import (
	"context"
	"time"

	"github.com/Keksclan/goRawrStash/track"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the metric vectors shared by every tracked method.
type Collector struct {
	calls    *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates a Collector and registers it with reg. A nil reg means
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rawrstash",
			Name:      "calls_total",
			Help:      "Tracked calls, by method.",
		}, []string{"method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rawrstash",
			Name:      "call_errors_total",
			Help:      "Tracked calls that returned an error, by method.",
		}, []string{"method"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rawrstash",
			Name:      "call_duration_seconds",
			Help:      "Latency of tracked calls including store bookkeeping.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"method"}),
	}
	for _, col := range []prometheus.Collector{c.calls, c.errors, c.duration} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Middleware observes every call of the method registered under name.
func (c *Collector) Middleware(name string) track.Middleware {
	calls := c.calls.WithLabelValues(name)
	errs := c.errors.WithLabelValues(name)
	dur := c.duration.WithLabelValues(name)
	return func(next track.Func) track.Func {
		return func(ctx context.Context, args ...any) (any, error) {
			start := time.Now()
			res, err := next(ctx, args...)
			dur.Observe(time.Since(start).Seconds())
			calls.Inc()
			if err != nil {
				errs.Inc()
			}
			return res, err
		}
	}
}
