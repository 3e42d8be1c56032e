package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/loykin/airlaunch/internal/env"
	"github.com/loykin/airlaunch/internal/logger"
	"github.com/loykin/airlaunch/internal/probe"
	"github.com/loykin/airlaunch/internal/process"
	"github.com/loykin/airlaunch/internal/readiness"
)

// Name is the base name of the config file searched for when no explicit
// path is given (airlaunch.toml, airlaunch.yaml, ...).
const Name = "airlaunch"

// EnvPrefix prefixes environment overrides, e.g. AIRLAUNCH_READINESS_ADDRESS.
const EnvPrefix = "AIRLAUNCH"

// Shell kinds.
const (
	ShellGUI      = "gui"
	ShellTUI      = "tui"
	ShellHeadless = "headless"
)

type Config struct {
	Backend   Backend       `mapstructure:"backend"`
	Readiness Readiness     `mapstructure:"readiness"`
	Shell     Shell         `mapstructure:"shell"`
	Log       logger.Config `mapstructure:"log"`
	Metrics   Metrics       `mapstructure:"metrics"`
	Server    Server        `mapstructure:"server"`
	History   History       `mapstructure:"history"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// Backend describes the process spawned before the shell.
type Backend struct {
	Name       string            `mapstructure:"name"`
	Command    string            `mapstructure:"command"`
	WorkDir    string            `mapstructure:"work_dir"`
	Env        []string          `mapstructure:"env"`
	EnvFiles   []string          `mapstructure:"env_files"`
	UseOSEnv   bool              `mapstructure:"use_os_env"`
	Log        logger.FileConfig `mapstructure:"log"`
	StopOnExit bool              `mapstructure:"stop_on_exit"`
	StopWait   time.Duration     `mapstructure:"stop_wait"`
}

// Readiness configures the probe and the bounded poll around it.
type Readiness struct {
	probe.Config `mapstructure:",squash"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	Interval     time.Duration `mapstructure:"interval"`
	// Required makes a readiness timeout fatal instead of a warning.
	Required bool `mapstructure:"required"`
}

type Shell struct {
	Kind    string        `mapstructure:"kind"`
	Title   string        `mapstructure:"title"`
	AppID   string        `mapstructure:"app_id"`
	Width   int           `mapstructure:"width"`
	Height  int           `mapstructure:"height"`
	Refresh time.Duration `mapstructure:"refresh"`
}

type Metrics struct {
	Enabled bool `mapstructure:"enabled"`
	// Listen serves /metrics on its own address. Empty means /metrics is only
	// served by the status server.
	Listen string `mapstructure:"listen"`
}

type Server struct {
	Listen   string `mapstructure:"listen"`
	BasePath string `mapstructure:"base_path"`
}

type History struct {
	DSN string `mapstructure:"dsn"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	var c Config
	v := viper.New()
	setDefaults(v)
	// Unmarshal of plain defaults cannot fail.
	_ = v.Unmarshal(&c)
	return c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.name", "backend")
	v.SetDefault("backend.command", "go run main.go")
	v.SetDefault("backend.work_dir", "backend")
	v.SetDefault("backend.env", []string{})
	v.SetDefault("backend.env_files", []string{})
	v.SetDefault("backend.use_os_env", true)
	v.SetDefault("backend.log.dir", "")
	v.SetDefault("backend.log.stdout", "")
	v.SetDefault("backend.log.stderr", "")
	v.SetDefault("backend.log.max_size_mb", logger.DefaultMaxSizeMB)
	v.SetDefault("backend.log.max_backups", logger.DefaultMaxBackups)
	v.SetDefault("backend.log.max_age_days", logger.DefaultMaxAgeDays)
	v.SetDefault("backend.log.compress", false)
	v.SetDefault("backend.stop_on_exit", false)
	v.SetDefault("backend.stop_wait", "3s")

	v.SetDefault("readiness.type", probe.TypeTCP)
	v.SetDefault("readiness.address", "127.0.0.1:8080")
	v.SetDefault("readiness.url", "")
	v.SetDefault("readiness.command", "")
	v.SetDefault("readiness.dial_timeout", probe.DefaultTimeout.String())
	v.SetDefault("readiness.max_attempts", readiness.DefaultMaxAttempts)
	v.SetDefault("readiness.interval", readiness.DefaultInterval.String())
	v.SetDefault("readiness.required", false)

	v.SetDefault("shell.kind", ShellGUI)
	v.SetDefault("shell.title", "airlaunch")
	v.SetDefault("shell.app_id", "io.github.loykin.airlaunch")
	v.SetDefault("shell.width", 800)
	v.SetDefault("shell.height", 600)
	v.SetDefault("shell.refresh", "1s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.path", "")
	v.SetDefault("log.max_size_mb", logger.DefaultMaxSizeMB)
	v.SetDefault("log.max_backups", logger.DefaultMaxBackups)
	v.SetDefault("log.max_age_days", logger.DefaultMaxAgeDays)
	v.SetDefault("log.compress", false)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", "")
	v.SetDefault("server.listen", "")
	v.SetDefault("server.base_path", "")
	v.SetDefault("history.dsn", "")
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"shell":           "shell.kind",
	"backend-cmd":     "backend.command",
	"workdir":         "backend.work_dir",
	"probe-address":   "readiness.address",
	"max-attempts":    "readiness.max_attempts",
	"interval":        "readiness.interval",
	"require-backend": "readiness.required",
	"stop-on-exit":    "backend.stop_on_exit",
	"log-level":       "log.level",
	"status-listen":   "server.listen",
	"history-dsn":     "history.dsn",
}

// Load reads the configuration. Precedence, highest first: flags that were
// set explicitly, AIRLAUNCH_* environment variables, the config file, defaults.
// With an empty path, airlaunch.* is searched in the working directory and in
// $HOME/.config/airlaunch; a missing file is not an error. fs may be nil.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if filepath.Ext(path) == "" {
			v.SetConfigType("toml")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(Name)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", Name))
		}
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.File = v.ConfigFileUsed()
	return &c, nil
}

// Validate reports the first problem that would prevent a launch.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend.Command) == "" {
		return errors.New("backend.command is required")
	}
	if c.Backend.StopWait < 0 {
		return errors.New("backend.stop_wait must not be negative")
	}
	r := c.Readiness
	if r.MaxAttempts < 1 {
		return fmt.Errorf("readiness.max_attempts must be at least 1, got %d", r.MaxAttempts)
	}
	if r.Interval <= 0 {
		return fmt.Errorf("readiness.interval must be positive, got %s", r.Interval)
	}
	switch strings.ToLower(r.Type) {
	case "", probe.TypeTCP:
		if _, port, err := net.SplitHostPort(r.Address); err != nil || port == "" {
			return fmt.Errorf("readiness.address %q must be host:port", r.Address)
		}
	case probe.TypeHTTP:
		u, err := url.Parse(r.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("readiness.url %q must be an http(s) URL", r.URL)
		}
	case probe.TypeCommand:
		if strings.TrimSpace(r.Command) == "" {
			return errors.New("readiness.command is required for command probes")
		}
	default:
		return fmt.Errorf("unknown readiness.type %q", r.Type)
	}
	switch c.Shell.Kind {
	case ShellGUI, ShellTUI, ShellHeadless:
	default:
		return fmt.Errorf("unknown shell.kind %q (want gui, tui or headless)", c.Shell.Kind)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// ProcessSpec resolves the backend into a process spec, composing its
// environment from the OS (when use_os_env), env files and explicit entries.
func (b Backend) ProcessSpec() (process.Spec, error) {
	e := env.New(b.UseOSEnv)
	for _, f := range b.EnvFiles {
		if err := e.LoadFile(f); err != nil {
			return process.Spec{}, err
		}
	}
	e.Apply(b.Env)
	return process.Spec{
		Name:    b.Name,
		Command: b.Command,
		WorkDir: b.WorkDir,
		Env:     e.Merge(nil),
		Log:     b.Log,
	}, nil
}
