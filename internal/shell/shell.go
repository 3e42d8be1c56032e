// Package shell defines the application runtime the launcher hands control
// to once the backend has been brought up.
package shell

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/loykin/airlaunch/internal/status"
)

// Shell runs the application until the user closes it or ctx is cancelled.
// Run blocks; a non-nil error means the shell could not start or failed.
type Shell interface {
	Kind() string
	Run(ctx context.Context, src status.Source) error
}

// DefaultRefresh is how often shells pull a new status snapshot.
const DefaultRefresh = time.Second

// ErrNoDisplay is returned by graphical shells when no display is available.
var ErrNoDisplay = errors.New("no display available")

// Options are shared by all shell kinds. Fields a kind has no use for are ignored.
type Options struct {
	Title   string
	AppID   string
	Width   int
	Height  int
	Refresh time.Duration
	Logger  *slog.Logger
}

// WithDefaults fills zero fields.
func (o Options) WithDefaults() Options {
	if o.Title == "" {
		o.Title = "airlaunch"
	}
	if o.AppID == "" {
		o.AppID = "io.github.loykin.airlaunch"
	}
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 600
	}
	if o.Refresh <= 0 {
		o.Refresh = DefaultRefresh
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
