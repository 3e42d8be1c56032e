package readiness

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/loykin/airlaunch/internal/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted fails the first failN checks, then succeeds. failN < 0 never succeeds.
type scripted struct {
	failN int
	calls int
}

func (s *scripted) Check(context.Context) error {
	s.calls++
	if s.failN < 0 || s.calls <= s.failN {
		return errors.New("connection refused")
	}
	return nil
}

func (s *scripted) Describe() string { return "scripted" }

type sleepRecorder struct{ slept []time.Duration }

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.slept = append(r.slept, d)
	return nil
}

func TestWaitReadyAfterTwoFailures(t *testing.T) {
	p := &scripted{failN: 2}
	rec := &sleepRecorder{}
	var observed []int
	w := Waiter{
		Probe:       p,
		MaxAttempts: 30,
		Interval:    300 * time.Millisecond,
		Sleep:       rec.sleep,
		Observe:     func(n int, _ error) { observed = append(observed, n) },
	}

	res := w.Wait(context.Background())

	assert.True(t, res.Ready)
	assert.NoError(t, res.LastErr)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, p.calls)
	assert.Equal(t, []time.Duration{300 * time.Millisecond, 300 * time.Millisecond}, rec.slept)
	assert.Equal(t, []int{1, 2, 3}, observed)
}

func TestWaitNeverReady(t *testing.T) {
	p := &scripted{failN: -1}
	rec := &sleepRecorder{}
	w := Waiter{Probe: p, MaxAttempts: 30, Interval: 300 * time.Millisecond, Sleep: rec.sleep}

	res := w.Wait(context.Background())

	assert.False(t, res.Ready)
	assert.False(t, res.Interrupted())
	assert.EqualError(t, res.LastErr, "connection refused")
	assert.Equal(t, 30, res.Attempts)
	assert.Equal(t, 30, p.calls)
	require.Len(t, rec.slept, 29, "no sleep after the final check")

	var total time.Duration
	for _, d := range rec.slept {
		total += d
	}
	assert.Equal(t, 8700*time.Millisecond, total)
}

func TestWaitReadyImmediately(t *testing.T) {
	rec := &sleepRecorder{}
	res := Waiter{Probe: &scripted{}, MaxAttempts: 5, Interval: time.Second, Sleep: rec.sleep}.Wait(context.Background())
	assert.True(t, res.Ready)
	assert.Equal(t, 1, res.Attempts)
	assert.Empty(t, rec.slept)
}

func TestWaitDefaultsAttempts(t *testing.T) {
	p := &scripted{failN: -1}
	res := Waiter{Probe: p, Sleep: (&sleepRecorder{}).sleep}.Wait(context.Background())
	assert.Equal(t, DefaultMaxAttempts, res.Attempts)
}

func TestWaitStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &scripted{failN: -1}
	w := Waiter{
		Probe:       p,
		MaxAttempts: 30,
		Interval:    time.Hour,
		Sleep: func(ctx context.Context, d time.Duration) error {
			cancel()
			return sleepCtx(ctx, d)
		},
	}
	res := w.Wait(ctx)
	assert.False(t, res.Ready)
	assert.True(t, res.Interrupted())
	assert.Equal(t, 1, res.Attempts)
}

// The backend's port opens ~450ms after start: checks at 0ms and 300ms
// fail, the one at 600ms succeeds.
func TestWaitRealTCPPort(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	opened := make(chan net.Listener, 1)
	go func() {
		time.Sleep(450 * time.Millisecond)
		l, err := net.Listen("tcp", addr)
		if err != nil {
			opened <- nil
			return
		}
		opened <- l
	}()

	w := Waiter{Probe: probe.TCP{Address: addr, Timeout: 100 * time.Millisecond}, MaxAttempts: 30, Interval: 300 * time.Millisecond}
	res := w.Wait(context.Background())

	l := <-opened
	if l == nil {
		t.Skip("port was taken before the listener reopened")
	}
	defer func() { _ = l.Close() }()

	assert.True(t, res.Ready)
	assert.Equal(t, 3, res.Attempts)
	assert.GreaterOrEqual(t, res.Elapsed, 600*time.Millisecond)
}
