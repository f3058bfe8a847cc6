package discovery

import "time"

// backoff implements the exponential backoff bounded by a configured
// max that spec.md §4.4 requires on 403-class remote errors: each
// consecutive rate-limit doubles the wait (starting from the host's
// suggested retry-after), capped at max, reset on the next success.
type backoff struct {
	max     time.Duration
	current time.Duration
}

func newBackoff(max time.Duration) *backoff {
	if max <= 0 {
		max = 2 * time.Minute
	}
	return &backoff{max: max}
}

func (b *backoff) next(suggested time.Duration) time.Duration {
	if b.current == 0 {
		b.current = suggested
	} else {
		b.current *= 2
	}
	if b.current > b.max {
		b.current = b.max
	}
	return b.current
}

func (b *backoff) reset() {
	b.current = 0
}
