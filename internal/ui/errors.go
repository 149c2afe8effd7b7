// internal/ui/errors.go
// Error taxonomy for remote-UI interaction. Classification happens once, in
// the retry policy, instead of at every call site.
package ui

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the transient failure modes a page implementation is
// expected to surface. All three are absorbed by a retry policy within its
// attempt budget and never reach the batch driver directly.
var (
	// ErrStaleElement means a previously resolved element handle was detached
	// by a re-render. Callers re-resolve the target fresh on every attempt.
	ErrStaleElement = errors.New("stale element reference")

	// ErrNotFound means the target does not currently exist in the document.
	ErrNotFound = errors.New("element not found")

	// ErrClickIntercepted means another node swallowed the click, typically
	// an overlay that has not finished animating away.
	ErrClickIntercepted = errors.New("click intercepted")
)

// TimeoutError reports that a bounded wait on a target expired. Unlike the
// sentinels above it always surfaces to the caller, which decides whether it
// means "retry the whole operation" or "the session is gone".
type TimeoutError struct {
	Target    Target
	Condition Condition
	Timeout   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %v waiting for %s to be %s", e.Timeout, e.Target, e.Condition)
}

// FieldError reports a non-retryable failure while populating a single form
// field, e.g. a select control with no option matching the requested text.
type FieldError struct {
	Field Target
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("populating %s with %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// ExhaustedError is returned by Do when every attempt of a policy failed with
// a retryable error.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// IsRetryable reports whether err is one of the transient UI failures that a
// fixed-delay retry can plausibly clear. Wait timeouts are deliberately not
// included; they carry meaning for the caller.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStaleElement) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrClickIntercepted)
}

// IsTimeout reports whether err is (or wraps) an expired element wait.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
