package client

import (
	"context"
	"math/rand/v2"
	"time"
)

// BackoffStrategy computes the wait before a retry.
type BackoffStrategy interface {
	Next(attempt int) time.Duration
}

// ExponentialBackoff grows the wait by Factor per attempt, capped at Max,
// then spreads it by ±Jitter.
type ExponentialBackoff struct {
	Base   time.Duration
	Max    time.Duration
	Factor float64
	Jitter float64 // 0.0 to 1.0
}

// DefaultBackoff waits 100ms, 200ms, ... up to 5s with 20% jitter.
func DefaultBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		Base:   100 * time.Millisecond,
		Max:    5 * time.Second,
		Factor: 2.0,
		Jitter: 0.2,
	}
}

// Next returns the wait before retry number attempt (0-based).
func (b *ExponentialBackoff) Next(attempt int) time.Duration {
	if attempt < 0 {
		return b.Base
	}

	delay := float64(b.Base)
	for i := 0; i < attempt && delay < float64(b.Max); i++ {
		delay *= b.Factor
	}
	if delay > float64(b.Max) {
		delay = float64(b.Max)
	}

	if b.Jitter > 0 {
		delay += delay * (rand.Float64()*2 - 1) * b.Jitter
	}
	if delay < 0 {
		return 0
	}
	return time.Duration(delay)
}

// Retry calls fn until it succeeds, ctx is done, or maxAttempts calls have
// failed (maxAttempts <= 0 means no limit). It returns fn's last error, or
// ctx.Err() when cancelled while waiting.
func Retry(ctx context.Context, b BackoffStrategy, maxAttempts int, fn func(ctx context.Context) error) error {
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if maxAttempts > 0 && attempt+1 >= maxAttempts {
			return err
		}

		timer := time.NewTimer(b.Next(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
