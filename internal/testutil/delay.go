// Package testutil provides small deterministic helpers shared by the
// scenario runner and the test suites: a context-aware delay and a
// resettable logical clock.
package testutil

import (
	"context"
	"time"
)

// Delay waits until d has elapsed or ctx is done, whichever comes first.
//
// This is the suspension primitive used by asynchronous actions; the store
// core itself never blocks. Returns ctx.Err() if the context ends the wait.
func Delay(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
