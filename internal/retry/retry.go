// Package retry runs an operation under a count-based retry budget with a
// fixed delay between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Klingon-tech/icon-cli/internal/clock"
)

// ErrExhausted is returned when every attempt failed.
var ErrExhausted = errors.New("retry budget exhausted")

// Policy is a retry budget.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// permanentError stops retrying.
type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not retryable. Do returns the wrapped error as is.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls fn until it succeeds, returns a Permanent error, or the policy's
// attempts are used up. fn receives the 1-based attempt number. The delay is
// only waited between attempts.
func Do(ctx context.Context, clk clock.Clock, p Policy, fn func(attempt int) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		last = err
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clk.After(p.Delay):
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, last)
}
