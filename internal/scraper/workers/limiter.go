package workers

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces detail-page fetches with a token bucket so enrichment
// traffic stays under the site's tolerance.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter allows perMinute requests with a small burst.
func NewLimiter(perMinute int) *Limiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 5),
	}
}

// Wait blocks until a token is available or the context ends.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether a request may proceed immediately.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}
