package process

import "time"

// Status is a point-in-time view of the backend process.
type Status struct {
	Name      string    `json:"name"`
	PID       int       `json:"pid"`
	Running   bool      `json:"running"`
	StartedAt time.Time `json:"started_at"`
	ExitedAt  time.Time `json:"exited_at,omitzero"`
	ExitErr   string    `json:"exit_error,omitempty"`
	Usage     *Usage    `json:"usage,omitempty"`
}
