// Package launcher brings up the backend and hands control to the shell:
// spawn, bounded readiness wait, then the shell's blocking run.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/loykin/airlaunch/internal/config"
	"github.com/loykin/airlaunch/internal/history"
	"github.com/loykin/airlaunch/internal/metrics"
	"github.com/loykin/airlaunch/internal/probe"
	"github.com/loykin/airlaunch/internal/process"
	"github.com/loykin/airlaunch/internal/readiness"
	"github.com/loykin/airlaunch/internal/shell"
	"github.com/loykin/airlaunch/internal/status"
)

var (
	// ErrSpawn means the backend process could not be started.
	ErrSpawn = errors.New("failed to spawn backend")
	// ErrBackendNotReady is returned only when readiness is required.
	ErrBackendNotReady = errors.New("backend not ready")
	// ErrShell means the shell failed to start or exited with an error.
	ErrShell = errors.New("shell failed")
)

// historyTimeout bounds a single history write.
const historyTimeout = 2 * time.Second

// Backend is a spawned backend process.
type Backend interface {
	PID() int
	Snapshot() process.Status
	Done() <-chan struct{}
	Stop(wait time.Duration) error
}

// Spawner starts the backend described by spec.
type Spawner func(spec process.Spec) (Backend, error)

func spawnProcess(spec process.Spec) (Backend, error) {
	b, err := process.Spawn(spec)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Launcher brings up one backend and hands off to a shell. It is safe to
// call Snapshot concurrently with Run.
type Launcher struct {
	cfg   config.Config
	spec  process.Spec
	shell shell.Shell
	log   *slog.Logger
	diag  io.Writer
	spawn Spawner
	probe probe.Probe
	sleep func(ctx context.Context, d time.Duration) error
	sink  history.Sink
	usage func(pid int) (process.Usage, error)

	mu        sync.Mutex
	backend   Backend
	ready     status.Readiness
	startedAt time.Time
	stopping  bool
}

// New validates cfg and prepares a launcher. Nothing is started until Run.
func New(cfg *config.Config, opts ...Option) (*Launcher, error) {
	if cfg == nil {
		d := config.Default()
		cfg = &d
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	spec, err := cfg.Backend.ProcessSpec()
	if err != nil {
		return nil, fmt.Errorf("backend environment: %w", err)
	}
	l := &Launcher{
		cfg:   *cfg,
		spec:  spec,
		diag:  os.Stderr,
		spawn: spawnProcess,
		usage: process.ReadUsage,
	}
	for _, o := range opts {
		o(l)
	}
	if l.log == nil {
		l.log = slog.Default()
	}
	l.log = l.log.With("component", "launcher")
	if l.probe == nil {
		p, err := probe.New(cfg.Readiness.Config)
		if err != nil {
			return nil, fmt.Errorf("readiness probe: %w", err)
		}
		l.probe = p
	}
	l.ready = status.Readiness{
		State:       status.StatePending,
		Probe:       l.probe.Describe(),
		MaxAttempts: cfg.Readiness.MaxAttempts,
	}
	return l, nil
}

// Run spawns the backend, waits for it, then blocks in the shell.
//
// A spawn failure returns ErrSpawn before any probe or shell call. A
// readiness timeout writes one diagnostic line and continues, unless
// readiness.required is set, in which case ErrBackendNotReady is returned
// and the shell is not started. A shell failure returns ErrShell.
// Cancelling ctx during the wait returns the context error. Once ctx is
// cancelled the backend is stopped on the way out; otherwise it is left
// running unless backend.stop_on_exit is set.
func (l *Launcher) Run(ctx context.Context) error {
	if l.shell == nil {
		return fmt.Errorf("%w: no shell configured", ErrShell)
	}
	l.mu.Lock()
	l.startedAt = time.Now()
	l.mu.Unlock()

	b, err := l.spawn(l.spec)
	metrics.ObserveSpawn(err == nil)
	if err != nil {
		l.record(history.EventSpawnFailed, history.Record{Name: l.spec.Name, Detail: err.Error()})
		return fmt.Errorf("%w %q in %q: %w", ErrSpawn, l.spec.Command, l.spec.WorkDir, err)
	}
	l.mu.Lock()
	l.backend = b
	l.mu.Unlock()
	metrics.SetBackendRunning(true)
	l.log.Info("backend started", "name", l.spec.Name, "pid", b.PID(), "command", l.spec.Command, "work_dir", l.spec.WorkDir)
	l.record(history.EventSpawned, l.recordOf(b))
	go l.watch(b)

	// The backend runs in its own process group, so a terminal interrupt
	// never reaches it. Stop it whenever ctx ends the run.
	defer func() {
		if l.cfg.Backend.StopOnExit || ctx.Err() != nil {
			l.stopBackend(b)
		}
	}()

	res := l.WaitReady(ctx)
	switch {
	case res.Ready:
		l.log.Info("backend ready", "attempts", res.Attempts, "elapsed", res.Elapsed)
		l.record(history.EventReady, l.recordOf(b))
	case res.Interrupted():
		l.log.Info("readiness wait interrupted", "attempts", res.Attempts)
		l.record(history.EventNotReady, l.recordWith(b, "interrupted"))
		return res.LastErr
	default:
		line := DiagnosticLine(l.probe)
		_, _ = fmt.Fprintln(l.diag, line)
		l.log.Debug("readiness timed out", "attempts", res.Attempts, "elapsed", res.Elapsed, "last_error", res.LastErr)
		l.record(history.EventNotReady, l.recordWith(b, line))
		if l.cfg.Readiness.Required {
			return fmt.Errorf("%w after %d checks: %w", ErrBackendNotReady, res.Attempts, res.LastErr)
		}
	}

	kind := l.shell.Kind()
	err = l.shell.Run(ctx, l)
	metrics.ObserveShellRun(kind, err == nil)
	if err != nil {
		l.record(history.EventShellExited, l.recordWith(b, err.Error()))
		return fmt.Errorf("%w (%s): %w", ErrShell, kind, err)
	}
	l.log.Debug("shell exited", "kind", kind)
	l.record(history.EventShellExited, l.recordOf(b))
	return nil
}

// WaitReady runs the bounded readiness poll and records its outcome in the
// launcher status.
func (l *Launcher) WaitReady(ctx context.Context) readiness.Result {
	l.setReadiness(func(r *status.Readiness) { r.State = status.StateWaiting })
	w := readiness.Waiter{
		Probe:       l.probe,
		MaxAttempts: l.cfg.Readiness.MaxAttempts,
		Interval:    l.cfg.Readiness.Interval,
		Sleep:       l.sleep,
		Observe: func(attempt int, err error) {
			metrics.ObserveProbe(err == nil)
			if err != nil {
				l.log.Debug("backend not reachable yet", "attempt", attempt, "probe", l.probe.Describe(), "err", err)
			}
			l.setReadiness(func(r *status.Readiness) {
				r.Attempts = attempt
				r.LastError = errString(err)
			})
		},
	}
	res := w.Wait(ctx)

	outcome := status.StateTimeout
	switch {
	case res.Ready:
		outcome = status.StateReady
	case res.Interrupted():
		outcome = status.StateInterrupted
	}
	metrics.ObserveReadiness(string(outcome), res.Elapsed.Seconds())
	l.setReadiness(func(r *status.Readiness) {
		r.State = outcome
		r.Attempts = res.Attempts
		r.Elapsed = res.Elapsed
		r.LastError = errString(res.LastErr)
	})
	return res
}

// DiagnosticLine is the single line printed when the backend never became
// reachable, e.g. "backend could not start on port 8080".
func DiagnosticLine(p probe.Probe) string {
	if pr, ok := p.(probe.Porter); ok {
		return "backend could not start on port " + pr.Port()
	}
	return "backend could not start (" + p.Describe() + ")"
}

// Snapshot implements status.Source.
func (l *Launcher) Snapshot() status.Snapshot {
	l.mu.Lock()
	snap := status.Snapshot{
		StartedAt: l.startedAt,
		Readiness: l.ready,
	}
	if l.shell != nil {
		snap.Shell = l.shell.Kind()
	}
	b := l.backend
	l.mu.Unlock()

	if b != nil {
		snap.Backend = b.Snapshot()
		if snap.Backend.Running && l.usage != nil {
			if u, err := l.usage(snap.Backend.PID); err == nil {
				snap.Backend.Usage = &u
			}
		}
	} else {
		snap.Backend.Name = l.spec.Name
	}
	return snap
}

func (l *Launcher) setReadiness(fn func(r *status.Readiness)) {
	l.mu.Lock()
	fn(&l.ready)
	l.mu.Unlock()
}

// watch logs an exit of the backend that the launcher did not ask for.
func (l *Launcher) watch(b Backend) {
	<-b.Done()
	metrics.SetBackendRunning(false)
	l.mu.Lock()
	stopping := l.stopping
	l.mu.Unlock()
	if stopping {
		return
	}
	st := b.Snapshot()
	l.log.Warn("backend exited", "pid", st.PID, "exit_error", st.ExitErr)
}

func (l *Launcher) stopBackend(b Backend) {
	l.mu.Lock()
	l.stopping = true
	l.mu.Unlock()
	if err := b.Stop(l.cfg.Backend.StopWait); err != nil {
		l.log.Warn("failed to stop backend", "pid", b.PID(), "err", err)
		return
	}
	l.log.Info("backend stopped", "pid", b.PID())
	l.record(history.EventBackendStopped, l.recordOf(b))
}

func (l *Launcher) recordOf(b Backend) history.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return history.Record{
		Name:     l.spec.Name,
		PID:      b.PID(),
		Attempts: l.ready.Attempts,
		Ready:    l.ready.State == status.StateReady,
	}
}

func (l *Launcher) recordWith(b Backend, detail string) history.Record {
	r := l.recordOf(b)
	r.Detail = detail
	return r
}

// record sends a history event. Failures are logged and otherwise ignored.
func (l *Launcher) record(t history.EventType, rec history.Record) {
	if l.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()
	if err := l.sink.Send(ctx, history.Event{Type: t, OccurredAt: time.Now().UTC(), Record: rec}); err != nil {
		l.log.Warn("history write failed", "event", t, "err", err)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
