package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TimeoutError reports an operation that overran its limit. It matches
// context.DeadlineExceeded with errors.Is.
type TimeoutError struct {
	Op    string
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out after %v", e.Op, e.Limit)
}

func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// WithTimeout runs fn with a context cancelled after timeout. Dependency
// pings use it so a hung Redis or Postgres cannot stall a readiness probe:
// if fn ignores its context the call still returns at the limit with a
// *TimeoutError while fn finishes in the background. A non-positive
// timeout runs fn directly.
func WithTimeout(ctx context.Context, timeout time.Duration, op string, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(timeoutCtx)
	}()

	var err error
	select {
	case err = <-done:
	case <-timeoutCtx.Done():
		err = timeoutCtx.Err()
	}
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return fmt.Errorf("%s: %w", op, ctx.Err())
	case errors.Is(err, context.DeadlineExceeded) && timeoutCtx.Err() != nil:
		return &TimeoutError{Op: op, Limit: timeout}
	default:
		return err
	}
}
