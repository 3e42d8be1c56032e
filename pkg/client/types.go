package client

import "github.com/loykin/airlaunch/internal/status"

// Snapshot is the body of GET /status.
type Snapshot = status.Snapshot

// Health is the body of GET /healthz.
type Health struct {
	Healthy   bool   `json:"healthy"`
	Readiness string `json:"readiness"`
	Running   bool   `json:"running"`
}
