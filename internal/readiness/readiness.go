// Package readiness waits for the backend with a bounded linear poll: a fixed
// number of checks separated by a fixed interval, no backoff and no jitter.
package readiness

import (
	"context"
	"errors"
	"time"

	"github.com/loykin/airlaunch/internal/probe"
)

// Defaults match the launcher's historical behavior: 30 checks, 300ms apart.
const (
	DefaultMaxAttempts = 30
	DefaultInterval    = 300 * time.Millisecond
)

// Result describes how a wait ended.
type Result struct {
	Ready    bool
	Attempts int
	Elapsed  time.Duration
	LastErr  error // last check error, or the context error when interrupted
}

// Interrupted reports whether the wait was cut short by context cancellation.
func (r Result) Interrupted() bool {
	return errors.Is(r.LastErr, context.Canceled) || errors.Is(r.LastErr, context.DeadlineExceeded)
}

// Waiter polls Probe until it succeeds or MaxAttempts checks have failed.
// It sleeps Interval between checks and never after the last one.
type Waiter struct {
	Probe       probe.Probe
	MaxAttempts int
	Interval    time.Duration

	// Sleep pauses between checks; nil uses a timer that honours ctx.
	Sleep func(ctx context.Context, d time.Duration) error
	// Observe, when set, is called after every check with its outcome.
	Observe func(attempt int, err error)
}

// Wait runs the poll loop.
func (w Waiter) Wait(ctx context.Context) Result {
	start := time.Now()
	maxAttempts := w.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	sleep := w.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var res Result
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := w.Probe.Check(ctx)
		res.Attempts = attempt
		if w.Observe != nil {
			w.Observe(attempt, err)
		}
		if err == nil {
			res.Ready = true
			res.LastErr = nil
			break
		}
		res.LastErr = err
		if ctxErr := ctx.Err(); ctxErr != nil {
			res.LastErr = ctxErr
			break
		}
		if attempt == maxAttempts {
			break
		}
		if err := sleep(ctx, w.Interval); err != nil {
			res.LastErr = err
			break
		}
	}
	res.Elapsed = time.Since(start)
	return res
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
