// Package status holds the launch snapshot shared by the launcher, the
// shells and the status API.
package status

import (
	"fmt"
	"time"

	"github.com/loykin/airlaunch/internal/process"
)

// State is the readiness phase of a launch.
type State string

const (
	StatePending     State = "pending"
	StateWaiting     State = "waiting"
	StateReady       State = "ready"
	StateTimeout     State = "timeout"
	StateInterrupted State = "interrupted"
)

// Readiness summarizes the poll against the backend.
type Readiness struct {
	State       State         `json:"state"`
	Probe       string        `json:"probe"`
	Attempts    int           `json:"attempts"`
	MaxAttempts int           `json:"max_attempts"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	LastError   string        `json:"last_error,omitempty"`
}

// Snapshot is a point-in-time view of a launch.
type Snapshot struct {
	StartedAt time.Time      `json:"started_at"`
	Backend   process.Status `json:"backend"`
	Readiness Readiness      `json:"readiness"`
	Shell     string         `json:"shell"`
}

// Healthy reports whether the backend answered its probe and is still alive.
func (s Snapshot) Healthy() bool {
	return s.Readiness.State == StateReady && s.Backend.Running
}

// BackendLine renders the backend state in one line for the shells.
func (s Snapshot) BackendLine() string {
	b := s.Backend
	switch {
	case b.PID == 0:
		return "not started"
	case b.Running:
		return fmt.Sprintf("running (pid %d)", b.PID)
	case b.ExitErr != "":
		return fmt.Sprintf("exited (pid %d): %s", b.PID, b.ExitErr)
	default:
		return fmt.Sprintf("exited (pid %d)", b.PID)
	}
}

// ReadinessLine renders the readiness state in one line for the shells.
func (s Snapshot) ReadinessLine() string {
	r := s.Readiness
	switch r.State {
	case StateReady:
		return fmt.Sprintf("ready after %d/%d checks (%s)", r.Attempts, r.MaxAttempts, r.Elapsed.Round(time.Millisecond))
	case StateWaiting:
		return fmt.Sprintf("waiting on %s (%d/%d)", r.Probe, r.Attempts, r.MaxAttempts)
	case StateTimeout:
		return fmt.Sprintf("not reachable after %d checks", r.Attempts)
	case StateInterrupted:
		return "interrupted"
	default:
		return string(StatePending)
	}
}

// UsageLine renders the backend resource usage, or "-" when unknown.
func (s Snapshot) UsageLine() string {
	u := s.Backend.Usage
	if u == nil {
		return "-"
	}
	return fmt.Sprintf("cpu %.1f%%  mem %.1f MB  threads %d", u.CPUPercent, u.MemoryMB(), u.Threads)
}

// Source provides live snapshots. Implementations must be safe for
// concurrent use.
type Source interface {
	Snapshot() Snapshot
}

// SourceFunc adapts a function to Source.
type SourceFunc func() Snapshot

func (f SourceFunc) Snapshot() Snapshot { return f() }
