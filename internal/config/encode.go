package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Settings returns c as nested maps keyed like the config file, with
// durations rendered as strings ("300ms") so the output can be read back.
func (c *Config) Settings() map[string]any {
	b, r := c.Backend, c.Readiness
	return map[string]any{
		"backend": map[string]any{
			"name":       b.Name,
			"command":    b.Command,
			"work_dir":   b.WorkDir,
			"env":        nonNil(b.Env),
			"env_files":  nonNil(b.EnvFiles),
			"use_os_env": b.UseOSEnv,
			"log": map[string]any{
				"dir":          b.Log.Dir,
				"stdout":       b.Log.StdoutPath,
				"stderr":       b.Log.StderrPath,
				"max_size_mb":  b.Log.MaxSizeMB,
				"max_backups":  b.Log.MaxBackups,
				"max_age_days": b.Log.MaxAgeDays,
				"compress":     b.Log.Compress,
			},
			"stop_on_exit": b.StopOnExit,
			"stop_wait":    b.StopWait.String(),
		},
		"readiness": map[string]any{
			"type":         r.Type,
			"address":      r.Address,
			"url":          r.URL,
			"command":      r.Command,
			"dial_timeout": r.Timeout.String(),
			"max_attempts": r.MaxAttempts,
			"interval":     r.Interval.String(),
			"required":     r.Required,
		},
		"shell": map[string]any{
			"kind":    c.Shell.Kind,
			"title":   c.Shell.Title,
			"app_id":  c.Shell.AppID,
			"width":   c.Shell.Width,
			"height":  c.Shell.Height,
			"refresh": c.Shell.Refresh.String(),
		},
		"log": map[string]any{
			"level":        c.Log.Level,
			"format":       c.Log.Format,
			"path":         c.Log.Path,
			"max_size_mb":  c.Log.MaxSizeMB,
			"max_backups":  c.Log.MaxBackups,
			"max_age_days": c.Log.MaxAgeDays,
			"compress":     c.Log.Compress,
		},
		"metrics": map[string]any{"enabled": c.Metrics.Enabled, "listen": c.Metrics.Listen},
		"server":  map[string]any{"listen": c.Server.Listen, "base_path": c.Server.BasePath},
		"history": map[string]any{"dsn": c.History.DSN},
	}
}

// Encode writes the settings of c in the given format: toml, yaml or json.
func (c *Config) Encode(w io.Writer, format string) error {
	s := c.Settings()
	switch strings.ToLower(format) {
	case "", "toml":
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		return enc.Encode(s)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	default:
		return fmt.Errorf("unknown format %q (want toml, yaml or json)", format)
	}
}

// WriteFile writes c to path, picking the format from the extension
// (TOML when there is none). An existing file is only replaced with force.
func (c *Config) WriteFile(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if err := c.Encode(f, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
