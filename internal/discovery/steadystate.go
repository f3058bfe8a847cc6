package discovery

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// steadyStateLimiter enforces a steady-state pace between successful
// calls once a threshold count has been crossed (spec.md §5). Below
// the threshold, calls proceed unthrottled; the rate.Limiter only
// starts gating once enough successful calls have accumulated.
type steadyStateLimiter struct {
	threshold int
	successes int
	limiter   *rate.Limiter
}

func newSteadyStateLimiter(threshold int, interval time.Duration) *steadyStateLimiter {
	if threshold <= 0 || interval <= 0 {
		return &steadyStateLimiter{threshold: 0}
	}
	return &steadyStateLimiter{
		threshold: threshold,
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (s *steadyStateLimiter) wait(ctx context.Context) error {
	if s == nil || s.limiter == nil || s.successes < s.threshold {
		return nil
	}
	return s.limiter.Wait(ctx)
}

func (s *steadyStateLimiter) recordSuccess() {
	if s == nil {
		return
	}
	s.successes++
}
