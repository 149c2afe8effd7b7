// internal/ui/wait.go
package ui

import (
	"context"
	"time"
)

// PollInterval is the fixed pause between condition probes.
const PollInterval = 500 * time.Millisecond

// Probe checks a condition once. A false result with a nil error means "not
// yet"; an error aborts the wait immediately.
type Probe func(ctx context.Context) (bool, error)

// Poll blocks until probe reports true, ctx is cancelled, or timeout elapses.
// The first probe runs immediately so an already-satisfied condition returns
// without sleeping. On expiry it fails with a *TimeoutError describing target
// and cond, which is what callers key their escalation decisions on.
func Poll(ctx context.Context, target Target, cond Condition, timeout time.Duration, probe Probe) error {
	deadline := time.Now().Add(timeout)
	for {
		ok, err := probe(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return &TimeoutError{Target: target, Condition: cond, Timeout: timeout}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(PollInterval):
		}
	}
}
