package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig controls backoff. Zero fields take the values of
// PublishRetry. Retryable, when set, stops retrying as soon as it returns
// false for an error; when nil, Transient is used.
type RetryConfig struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	JitterFraction float64
	Retryable      func(error) bool
}

// PublishRetry suits the analytics publish path. A batch waits in the
// collector while it retries, so the whole schedule stays under a second
// and a dead broker costs the batch rather than stalling new events.
func PublishRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialDelay:   50 * time.Millisecond,
		MaxDelay:       500 * time.Millisecond,
		Multiplier:     2,
		JitterFraction: 0.1,
		Retryable:      Transient,
	}
}

// SnapshotRetry suits periodic snapshot saves. Snapshots are taken every
// minute or so; retrying for several seconds rides out a Postgres failover
// without overlapping the next tick.
func SnapshotRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts:    4,
		InitialDelay:   250 * time.Millisecond,
		MaxDelay:       4 * time.Second,
		Multiplier:     3,
		JitterFraction: 0.2,
		Retryable:      Transient,
	}
}

// Transient reports whether err may succeed on a later attempt. Context
// cancellation and expiry never do.
func Transient(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// RetryError is returned once every attempt has failed.
type RetryError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("all %d attempts failed for %s: %v", e.Attempts, e.Op, e.Err)
}

func (e *RetryError) Unwrap() error { return e.Err }

func (c RetryConfig) withDefaults() RetryConfig {
	d := PublishRetry()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = d.InitialDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = max(d.MaxDelay, c.InitialDelay)
	}
	if c.Multiplier < 1 {
		c.Multiplier = d.Multiplier
	}
	if c.JitterFraction < 0 || c.JitterFraction >= 1 {
		c.JitterFraction = d.JitterFraction
	}
	if c.Retryable == nil {
		c.Retryable = Transient
	}
	return c
}

// Backoff returns the wait after the given failed attempt, starting at 1.
// It grows by Multiplier from InitialDelay, is jittered by up to
// JitterFraction either way, and never exceeds MaxDelay.
func (c RetryConfig) Backoff(attempt int) time.Duration {
	c = c.withDefaults()
	d := float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(max(attempt, 1)-1))
	d += d * c.JitterFraction * (2*rand.Float64() - 1)
	return time.Duration(min(d, float64(c.MaxDelay)))
}

// Retry calls fn until it succeeds, attempts run out, fn returns a
// non-retryable error, or ctx is done.
func Retry(ctx context.Context, op string, cfg RetryConfig, fn func() error) error {
	cfg = cfg.withDefaults()
	logger := slog.Default().With("component", "retry", "operation", op)

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			if attempt > 1 {
				logger.Info("succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if !cfg.Retryable(err) {
			return err
		}
		if attempt == cfg.MaxAttempts {
			return &RetryError{Op: op, Attempts: attempt, Err: err}
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%s: retry aborted: %w", op, ctx.Err())
		}

		delay := cfg.Backoff(attempt)
		logger.Warn("operation failed, retrying",
			"attempt", attempt,
			"max_attempts", cfg.MaxAttempts,
			"next_delay", delay,
			"error", err,
		)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s: retry aborted during backoff: %w", op, ctx.Err())
		}
	}
}
