// Package headless is a shell without a user interface. It logs readiness
// changes and blocks until the launcher's context is cancelled.
package headless

import (
	"context"
	"time"

	"github.com/loykin/airlaunch/internal/shell"
	"github.com/loykin/airlaunch/internal/status"
)

const Kind = "headless"

// Shell runs without any UI.
type Shell struct {
	opts shell.Options
}

func New(opts shell.Options) *Shell {
	return &Shell{opts: opts.WithDefaults()}
}

func (s *Shell) Kind() string { return Kind }

// Run logs each status change and blocks until ctx is cancelled.
func (s *Shell) Run(ctx context.Context, src status.Source) error {
	log := s.opts.Logger.With("component", "shell", "kind", Kind)
	t := time.NewTicker(s.opts.Refresh)
	defer t.Stop()

	var last status.Snapshot
	report := func() {
		snap := src.Snapshot()
		if snap.Readiness.State != last.Readiness.State || snap.Backend.Running != last.Backend.Running {
			log.Info("status", "backend", snap.BackendLine(), "readiness", snap.ReadinessLine())
		}
		last = snap
	}
	report()
	for {
		select {
		case <-ctx.Done():
			log.Debug("shell closed", "reason", ctx.Err())
			return nil
		case <-t.C:
			report()
		}
	}
}
