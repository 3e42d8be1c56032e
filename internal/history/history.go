package history

import (
	"context"
	"time"
)

// EventType defines the kind of launch lifecycle event.
type EventType string

const (
	EventSpawned        EventType = "spawned"
	EventSpawnFailed    EventType = "spawn_failed"
	EventReady          EventType = "ready"
	EventNotReady       EventType = "not_ready"
	EventShellExited    EventType = "shell_exited"
	EventBackendStopped EventType = "backend_stopped"
)

// Record is the launch state attached to an event.
type Record struct {
	Name     string `json:"name"`
	PID      int    `json:"pid"`
	Attempts int    `json:"attempts"`
	Ready    bool   `json:"ready"`
	Detail   string `json:"detail,omitempty"`
}

// Event represents a lifecycle event to be exported to external systems.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Record     Record    `json:"record"`
}

// Sink is a destination for history events.
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
}

// Table is the table name used by the SQL-backed sinks.
const Table = "launch_history"
