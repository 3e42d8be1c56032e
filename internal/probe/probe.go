// Package probe implements the readiness checks run against the backend.
package probe

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Probe checks whether the backend accepts work. Check returns nil when the
// backend is ready. Implementations must be safe for concurrent use.
type Probe interface {
	Check(ctx context.Context) error
	// Describe returns a human-readable description of the check.
	Describe() string
}

// Porter is implemented by probes that target a network port.
type Porter interface {
	Port() string
}

// Probe types accepted by New.
const (
	TypeTCP     = "tcp"
	TypeHTTP    = "http"
	TypeCommand = "command"
)

// DefaultTimeout bounds a single check when Config.Timeout is zero.
const DefaultTimeout = time.Second

// Config selects and parameterizes a probe.
type Config struct {
	Type    string        `mapstructure:"type"`
	Address string        `mapstructure:"address"`
	URL     string        `mapstructure:"url"`
	Command string        `mapstructure:"command"`
	Timeout time.Duration `mapstructure:"dial_timeout"` // per-check bound for every probe type
}

// New builds the probe described by c.
func New(c Config) (Probe, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	switch strings.ToLower(strings.TrimSpace(c.Type)) {
	case "", TypeTCP:
		if c.Address == "" {
			return nil, fmt.Errorf("tcp probe requires address")
		}
		return TCP{Address: c.Address, Timeout: timeout}, nil
	case TypeHTTP:
		if c.URL == "" {
			return nil, fmt.Errorf("http probe requires url")
		}
		return NewHTTP(c.URL, timeout), nil
	case TypeCommand:
		if strings.TrimSpace(c.Command) == "" {
			return nil, fmt.Errorf("command probe requires command")
		}
		return Command{Command: c.Command, Timeout: timeout}, nil
	default:
		return nil, fmt.Errorf("unknown probe type %q", c.Type)
	}
}
