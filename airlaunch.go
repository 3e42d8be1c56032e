// Package airlaunch is the embeddable API of the launcher: bring up a backend
// process, wait for its port, then run an application shell.
package airlaunch

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/loykin/airlaunch/internal/config"
	"github.com/loykin/airlaunch/internal/history"
	hfactory "github.com/loykin/airlaunch/internal/history/factory"
	"github.com/loykin/airlaunch/internal/launcher"
	"github.com/loykin/airlaunch/internal/metrics"
	"github.com/loykin/airlaunch/internal/server"
	"github.com/loykin/airlaunch/internal/shell"
	sfactory "github.com/loykin/airlaunch/internal/shell/factory"
	"github.com/loykin/airlaunch/internal/status"
)

// Re-export core types for external consumers.

type Config = config.Config

type Launcher = launcher.Launcher

type Option = launcher.Option

type Snapshot = status.Snapshot

type Shell = shell.Shell

type HistorySink = history.Sink

var (
	ErrSpawn           = launcher.ErrSpawn
	ErrBackendNotReady = launcher.ErrBackendNotReady
	ErrShell           = launcher.ErrShell
)

var (
	WithShell       = launcher.WithShell
	WithLogger      = launcher.WithLogger
	WithDiagnostics = launcher.WithDiagnostics
	WithHistory     = launcher.WithHistory
	WithProbe       = launcher.WithProbe
)

func DefaultConfig() Config { return config.Default() }

// LoadConfig reads path (or searches for airlaunch.* when empty) and applies
// AIRLAUNCH_* environment overrides.
func LoadConfig(path string) (*Config, error) { return config.Load(path, nil) }

// New builds a launcher whose shell is chosen by cfg.Shell.Kind. Options
// given by the caller take precedence.
func New(cfg *Config, opts ...Option) (*Launcher, error) {
	if cfg == nil {
		d := config.Default()
		cfg = &d
	}
	sh, err := NewShell(cfg, slog.Default())
	if err != nil {
		return nil, err
	}
	return launcher.New(cfg, append([]Option{launcher.WithShell(sh)}, opts...)...)
}

// NewShell builds the shell configured in cfg.Shell.
func NewShell(cfg *Config, log *slog.Logger) (Shell, error) {
	return sfactory.New(cfg.Shell.Kind, shell.Options{
		Title:   cfg.Shell.Title,
		AppID:   cfg.Shell.AppID,
		Width:   cfg.Shell.Width,
		Height:  cfg.Shell.Height,
		Refresh: cfg.Shell.Refresh,
		Logger:  log,
	})
}

// NewHistorySink opens the sink named by dsn (sqlite, postgres or clickhouse).
func NewHistorySink(dsn string) (HistorySink, error) { return hfactory.NewSinkFromDSN(dsn) }

// NewStatusServer serves /status, /healthz and /metrics for l on addr.
func NewStatusServer(addr, basePath string, l *Launcher) (*http.Server, error) {
	return server.NewServer(addr, basePath, l)
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }
