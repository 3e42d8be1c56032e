package main

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/loykin/airlaunch/internal/readiness"
)

// GlobalFlags are persistent on the root command. Apart from ConfigPath they
// are bound into the config, so only flags set explicitly override it.
type GlobalFlags struct {
	ConfigPath     string
	Shell          string
	BackendCmd     string
	WorkDir        string
	ProbeAddress   string
	MaxAttempts    int
	Interval       time.Duration
	RequireBackend bool
	StopOnExit     bool
	LogLevel       string
	StatusListen   string
	HistoryDSN     string
}

func (f *GlobalFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", "", "path to config file (default: search ./airlaunch.* and ~/.config/airlaunch)")
	fs.StringVar(&f.Shell, "shell", "gui", "shell to run once the backend is up: gui, tui or headless")
	fs.StringVar(&f.BackendCmd, "backend-cmd", "go run main.go", "command that starts the backend")
	fs.StringVar(&f.WorkDir, "workdir", "backend", "working directory of the backend")
	fs.StringVar(&f.ProbeAddress, "probe-address", "127.0.0.1:8080", "host:port polled for readiness")
	fs.IntVar(&f.MaxAttempts, "max-attempts", readiness.DefaultMaxAttempts, "maximum readiness checks")
	fs.DurationVar(&f.Interval, "interval", readiness.DefaultInterval, "pause between readiness checks")
	fs.BoolVar(&f.RequireBackend, "require-backend", false, "exit with an error instead of continuing when the backend never becomes reachable")
	fs.BoolVar(&f.StopOnExit, "stop-on-exit", false, "stop the backend when the shell exits")
	fs.StringVar(&f.LogLevel, "log-level", "info", "log level: debug, info, warn or error")
	fs.StringVar(&f.StatusListen, "status-listen", "", "serve the status API on this address (e.g. 127.0.0.1:9090)")
	fs.StringVar(&f.HistoryDSN, "history-dsn", "", "record launch history (sqlite path, postgres:// or clickhouse://)")
}

type ConfigInitFlags struct {
	Force bool
}

type ConfigShowFlags struct {
	Format string
}

type StatusFlags struct {
	URL     string
	Timeout time.Duration
	JSON    bool
}
