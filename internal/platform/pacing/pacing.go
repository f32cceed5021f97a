// Package pacing decides when each request of a concurrent batch may start,
// bounding the outbound rate toward shared public services.
package pacing

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer returns, for a batch of n dispatches, how long dispatch i waits
// measured from the moment Schedule is called.
type Pacer interface {
	Schedule(n int) []time.Duration
}

// FixedInterval staggers dispatch i by i × Interval.
type FixedInterval struct {
	Interval time.Duration
}

func (p FixedInterval) Schedule(n int) []time.Duration {
	out := make([]time.Duration, n)
	if p.Interval <= 0 {
		return out
	}
	for i := range out {
		out[i] = time.Duration(i) * p.Interval
	}
	return out
}

// TokenBucket paces dispatches through a shared rate.Limiter, so concurrent
// batches also respect one global rate.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket allows one dispatch per interval with a burst of one.
func NewTokenBucket(interval time.Duration) *TokenBucket {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &TokenBucket{limiter: rate.NewLimiter(limit, 1)}
}

func (p *TokenBucket) Schedule(n int) []time.Duration {
	out := make([]time.Duration, n)
	now := time.Now()
	for i := range out {
		r := p.limiter.ReserveN(now, 1)
		if !r.OK() {
			continue
		}
		out[i] = r.DelayFrom(now)
	}
	return out
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
