package launcher

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/loykin/airlaunch/internal/history"
	"github.com/loykin/airlaunch/internal/probe"
	"github.com/loykin/airlaunch/internal/process"
	"github.com/loykin/airlaunch/internal/shell"
)

// Option customizes a Launcher.
type Option func(*Launcher)

// WithShell sets the application shell run after the readiness wait.
func WithShell(s shell.Shell) Option { return func(l *Launcher) { l.shell = s } }

// WithLogger sets the structured logger. The default is slog.Default().
func WithLogger(log *slog.Logger) Option { return func(l *Launcher) { l.log = log } }

// WithDiagnostics sets where the user-facing readiness diagnostic is
// written. The default is os.Stderr.
func WithDiagnostics(w io.Writer) Option { return func(l *Launcher) { l.diag = w } }

// WithSpawner replaces process.Spawn.
func WithSpawner(s Spawner) Option { return func(l *Launcher) { l.spawn = s } }

// WithProbe replaces the probe built from the readiness config.
func WithProbe(p probe.Probe) Option { return func(l *Launcher) { l.probe = p } }

// WithSleep replaces the pause between readiness checks.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Launcher) { l.sleep = fn }
}

// WithHistory records lifecycle events to sink.
func WithHistory(sink history.Sink) Option { return func(l *Launcher) { l.sink = sink } }

// WithUsage replaces process.ReadUsage for status snapshots. A nil func
// disables usage sampling.
func WithUsage(fn func(pid int) (process.Usage, error)) Option {
	return func(l *Launcher) { l.usage = fn }
}
