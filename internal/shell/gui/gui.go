// Package gui is the desktop window shell, built on Fyne.
package gui

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/loykin/airlaunch/internal/shell"
	"github.com/loykin/airlaunch/internal/status"
)

// Kind is the shell.kind value selecting this shell.
const Kind = "gui"

// Shell shows the launcher status in a desktop window.
type Shell struct {
	opts shell.Options
}

// New returns a GUI shell; zero options take their defaults.
func New(opts shell.Options) *Shell {
	return &Shell{opts: opts.WithDefaults()}
}

func (s *Shell) Kind() string { return Kind }

// Run opens the window and blocks in the Fyne event loop until the window is
// closed or ctx is cancelled.
func (s *Shell) Run(ctx context.Context, src status.Source) (err error) {
	if !displayAvailable() {
		return fmt.Errorf("gui: %w (set DISPLAY or WAYLAND_DISPLAY, or use --shell=tui)", shell.ErrNoDisplay)
	}
	// Driver initialization failures surface as panics.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gui: %v", r)
		}
	}()

	a := app.NewWithID(s.opts.AppID)
	w := a.NewWindow(s.opts.Title)
	v := newView(s.opts.Title)
	v.update(src.Snapshot())
	w.SetContent(v.content)
	w.Resize(fyne.NewSize(float32(s.opts.Width), float32(s.opts.Height)))

	stop := make(chan struct{})
	defer close(stop)
	go s.refresh(ctx, stop, a, v, src)

	w.ShowAndRun()
	return nil
}

func (s *Shell) refresh(ctx context.Context, stop <-chan struct{}, a fyne.App, v *view, src status.Source) {
	t := time.NewTicker(s.opts.Refresh)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			fyne.Do(a.Quit)
			return
		case <-t.C:
			snap := src.Snapshot()
			fyne.Do(func() { v.update(snap) })
		}
	}
}

func displayAvailable() bool {
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd":
		return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
	}
	return true
}
