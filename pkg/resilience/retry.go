package resilience

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// RetryConfig parameterises the backoff schedule applied to a retried
// outbound call.
type RetryConfig struct {
	MaxRetries       int
	BaseDelay        time.Duration
	MaxDelay         time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the spec's default retry parameters.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		BaseDelay:         500 * time.Millisecond,
		MaxDelay:          30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Retrier retries a function according to RetryConfig, classifying
// each failure to decide whether another attempt is warranted.
type Retrier struct {
	cfg RetryConfig
}

// NewRetrier returns a Retrier configured by cfg. Zero-valued fields
// fall back to DefaultRetryConfig.
func NewRetrier(cfg RetryConfig) *Retrier {
	d := DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		d.MaxRetries = cfg.MaxRetries
	}
	if cfg.BaseDelay > 0 {
		d.BaseDelay = cfg.BaseDelay
	}
	if cfg.MaxDelay > 0 {
		d.MaxDelay = cfg.MaxDelay
	}
	if cfg.BackoffMultiplier > 0 {
		d.BackoffMultiplier = cfg.BackoffMultiplier
	}
	return &Retrier{cfg: d}
}

// Do invokes fn, retrying on classes that Retryable() permits with
// exponential backoff plus jitter, up to MaxRetries additional
// attempts. Auth and non-429 client errors propagate immediately.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxRetries+1; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		class := Classify(lastErr)
		if !class.Retryable() {
			return lastErr
		}
		if attempt > r.cfg.MaxRetries {
			break
		}

		delay := r.nextDelay(attempt)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
	return fmt.Errorf("exhausted %d retries: %w", r.cfg.MaxRetries, lastErr)
}

func (r *Retrier) nextDelay(attempt int) time.Duration {
	delay := float64(r.cfg.BaseDelay) * pow(r.cfg.BackoffMultiplier, attempt-1)
	if delay > float64(r.cfg.MaxDelay) {
		delay = float64(r.cfg.MaxDelay)
	}
	return addJitter(time.Duration(delay))
}

func pow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

func addJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	jitter := time.Duration(rand.Int63n(int64(d) / 5 + 1)) // up to +20%
	return d + jitter
}
