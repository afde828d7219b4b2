// Package poll provides a cancellable poll-until-predicate wait with an
// explicit timeout. Session readiness and script-load waits both build on it.
package poll

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned when the predicate never held within the bound.
var ErrTimeout = errors.New("poll: timeout")

// Until calls fn every interval until it returns true, the timeout elapses,
// or the context is cancelled. A non-nil error from fn aborts immediately.
// fn is called once before the first interval.
func Until(ctx context.Context, interval, timeout time.Duration, fn func() (bool, error)) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		ok, err := fn()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return ErrTimeout
		case <-tick.C:
		}
	}
}
