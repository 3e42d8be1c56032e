package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/loykin/airlaunch/internal/process"
)

func TestHealthy(t *testing.T) {
	s := Snapshot{Backend: process.Status{PID: 10, Running: true}, Readiness: Readiness{State: StateReady}}
	assert.True(t, s.Healthy())

	s.Backend.Running = false
	assert.False(t, s.Healthy())

	s.Backend.Running = true
	s.Readiness.State = StateTimeout
	assert.False(t, s.Healthy())
}

func TestLines(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		back string
		read string
	}{
		{"pending", Snapshot{}, "not started", "pending"},
		{"waiting",
			Snapshot{Backend: process.Status{PID: 7, Running: true}, Readiness: Readiness{State: StateWaiting, Probe: "tcp:127.0.0.1:8080", Attempts: 2, MaxAttempts: 30}},
			"running (pid 7)", "waiting on tcp:127.0.0.1:8080 (2/30)"},
		{"ready",
			Snapshot{Backend: process.Status{PID: 7, Running: true}, Readiness: Readiness{State: StateReady, Attempts: 3, MaxAttempts: 30, Elapsed: 601 * time.Millisecond}},
			"running (pid 7)", "ready after 3/30 checks (601ms)"},
		{"timeout after crash",
			Snapshot{Backend: process.Status{PID: 7, ExitErr: "exit status 2"}, Readiness: Readiness{State: StateTimeout, Attempts: 30}},
			"exited (pid 7): exit status 2", "not reachable after 30 checks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.back, tt.snap.BackendLine())
			assert.Equal(t, tt.read, tt.snap.ReadinessLine())
		})
	}
}

func TestUsageLine(t *testing.T) {
	assert.Equal(t, "-", Snapshot{}.UsageLine())
	s := Snapshot{Backend: process.Status{Usage: &process.Usage{CPUPercent: 12.34, RSSBytes: 3 * 1024 * 1024, Threads: 9}}}
	assert.Equal(t, "cpu 12.3%  mem 3.0 MB  threads 9", s.UsageLine())
}

func TestSourceFunc(t *testing.T) {
	var src Source = SourceFunc(func() Snapshot { return Snapshot{Shell: "tui"} })
	assert.Equal(t, "tui", src.Snapshot().Shell)
}
