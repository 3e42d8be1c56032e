package gui

import (
	"context"
	"errors"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"

	"github.com/loykin/airlaunch/internal/process"
	"github.com/loykin/airlaunch/internal/shell"
	"github.com/loykin/airlaunch/internal/status"
)

func TestViewUpdate(t *testing.T) {
	test.NewTempApp(t)

	v := newView("demo")
	v.update(status.Snapshot{
		Backend:   process.Status{PID: 99, Running: true},
		Readiness: status.Readiness{State: status.StateWaiting, Probe: "tcp:127.0.0.1:8080", Attempts: 4, MaxAttempts: 30},
	})
	assert.Equal(t, "running (pid 99)", v.backend.Text)
	assert.Equal(t, "waiting on tcp:127.0.0.1:8080 (4/30)", v.readiness.Text)
	assert.Equal(t, "tcp:127.0.0.1:8080", v.probe.Text)
	assert.Equal(t, "-", v.usage.Text)
	assert.Equal(t, 30.0, v.progress.Max)
	assert.Equal(t, 4.0, v.progress.Value)
	assert.True(t, v.progress.Visible())

	v.update(status.Snapshot{
		Backend:   process.Status{PID: 99, Running: true, Usage: &process.Usage{CPUPercent: 1, RSSBytes: 1 << 20, Threads: 4}},
		Readiness: status.Readiness{State: status.StateReady, Attempts: 5, MaxAttempts: 30, Elapsed: 1200 * time.Millisecond},
	})
	assert.Equal(t, "ready after 5/30 checks (1.2s)", v.readiness.Text)
	assert.Equal(t, "cpu 1.0%  mem 1.0 MB  threads 4", v.usage.Text)
	assert.False(t, v.progress.Visible())
}

func TestRunWithoutDisplay(t *testing.T) {
	if displayAvailable() {
		t.Setenv("DISPLAY", "")
		t.Setenv("WAYLAND_DISPLAY", "")
	}
	if displayAvailable() {
		t.Skip("platform always reports a display")
	}
	sh := New(shell.Options{})
	assert.Equal(t, "gui", sh.Kind())
	err := sh.Run(context.Background(), status.SourceFunc(func() status.Snapshot { return status.Snapshot{} }))
	assert.True(t, errors.Is(err, shell.ErrNoDisplay), "got %v", err)
}
