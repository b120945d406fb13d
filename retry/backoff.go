// Package retry runs an operation again after transient failures, waiting an
// exponentially growing, jittered delay between attempts.
package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// backoff returns the wait before retry number attempt (0-indexed), capped at
// cfg.MaxDelay.
func backoff(cfg Config, attempt int) time.Duration {
	d := float64(cfg.BaseDelay) * math.Pow(2, float64(attempt))
	if ceiling := float64(cfg.MaxDelay); ceiling > 0 && d > ceiling {
		d = ceiling
	}
	if cfg.Jitter > 0 {
		d += d * cfg.Jitter * (rand.Float64()*2 - 1)
	}
	return time.Duration(max(d, 0))
}
