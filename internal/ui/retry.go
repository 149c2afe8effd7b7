// internal/ui/retry.go
package ui

import (
	"context"
	"time"
)

// Policy bounds the retry behavior of a single fallible operation.
//
// Two flavors are used throughout the pipeline: a short fixed delay for
// element-level races (the UI settling after a re-render) and a longer,
// optionally growing delay for whole operations that may involve navigation.
// Policies nest: an operation run under the field-level policy can itself be
// one step of an operation run under the outer policy.
type Policy struct {
	// MaxAttempts is the total number of invocations, including the first.
	MaxAttempts int

	// Delay is the pause before each retry.
	Delay time.Duration

	// Grow scales Delay by the attempt number, so attempt n sleeps n*Delay.
	Grow bool

	// Classify decides whether an error is worth another attempt. Nil
	// defaults to IsRetryable.
	Classify func(error) bool
}

// FieldRetry is the stock policy for individual field interactions.
func FieldRetry() Policy {
	return Policy{MaxAttempts: 3, Delay: 300 * time.Millisecond}
}

// OpRetry is the stock policy for whole-record operations. It also retries
// wait timeouts, since a slow render may clear on a second pass.
func OpRetry() Policy {
	return Policy{
		MaxAttempts: 3,
		Delay:       2 * time.Second,
		Classify: func(err error) bool {
			return IsRetryable(err) || IsTimeout(err)
		},
	}
}

// LoginRetry is the stock policy for re-authentication, which is heavier than
// a field fill and gets multi-second, growing spacing.
func LoginRetry() Policy {
	return Policy{
		MaxAttempts: 3,
		Delay:       2 * time.Second,
		Grow:        true,
		Classify:    func(error) bool { return true },
	}
}

// Do invokes op under p. Errors the policy classifies as non-retryable
// propagate immediately. When every attempt fails the result is an
// *ExhaustedError wrapping the last attempt's error.
func Do(ctx context.Context, p Policy, op func(context.Context) error) error {
	classify := p.Classify
	if classify == nil {
		classify = IsRetryable
	}

	var last error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := p.Delay
			if p.Grow {
				delay = time.Duration(attempt-1) * p.Delay
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		last = op(ctx)
		if last == nil {
			return nil
		}
		if !classify(last) {
			return last
		}
	}
	return &ExhaustedError{Attempts: p.MaxAttempts, Last: last}
}
