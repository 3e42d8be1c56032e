package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/loykin/airlaunch/internal/config"
	hfactory "github.com/loykin/airlaunch/internal/history/factory"
	"github.com/loykin/airlaunch/internal/launcher"
	"github.com/loykin/airlaunch/internal/logger"
	"github.com/loykin/airlaunch/internal/metrics"
	"github.com/loykin/airlaunch/internal/server"
	"github.com/loykin/airlaunch/internal/shell"
	sfactory "github.com/loykin/airlaunch/internal/shell/factory"
)

const shutdownTimeout = 2 * time.Second

// runLaunch wires the ambient services around the launcher and runs it.
// Only the launcher's own errors are fatal; optional services that fail to
// start are logged and skipped.
func runLaunch(cmd *cobra.Command, cfg *config.Config) error {
	log, closer, err := logger.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()
	if cfg.File != "" {
		log.Debug("config loaded", "file", cfg.File)
	}

	if cfg.Metrics.Enabled || cfg.Server.Listen != "" {
		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			log.Warn("metrics disabled", "err", err)
		}
	}

	opts := []launcher.Option{
		launcher.WithLogger(log),
		launcher.WithDiagnostics(cmd.ErrOrStderr()),
	}
	if cfg.History.DSN != "" {
		sink, err := hfactory.NewSinkFromDSN(cfg.History.DSN)
		if err != nil {
			log.Warn("history disabled", "err", err)
		} else {
			if c, ok := sink.(io.Closer); ok {
				defer func() { _ = c.Close() }()
			}
			opts = append(opts, launcher.WithHistory(sink))
		}
	}

	sh, err := sfactory.New(cfg.Shell.Kind, shell.Options{
		Title:   cfg.Shell.Title,
		AppID:   cfg.Shell.AppID,
		Width:   cfg.Shell.Width,
		Height:  cfg.Shell.Height,
		Refresh: cfg.Shell.Refresh,
		Logger:  log,
	})
	if err != nil {
		return err
	}
	opts = append(opts, launcher.WithShell(sh))

	l, err := launcher.New(cfg, opts...)
	if err != nil {
		return err
	}

	if cfg.Server.Listen != "" {
		srv, err := server.NewServer(cfg.Server.Listen, cfg.Server.BasePath, l)
		if err != nil {
			log.Warn("status server disabled", "err", err)
		} else {
			log.Info("status server listening", "addr", srv.Addr)
			defer shutdown(srv)
		}
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Listen != "" {
		srv, err := server.NewMetricsServer(cfg.Metrics.Listen)
		if err != nil {
			log.Warn("metrics server disabled", "err", err)
		} else {
			log.Info("metrics server listening", "addr", srv.Addr)
			defer shutdown(srv)
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := l.Run(ctx); err != nil {
		return fmt.Errorf("airlaunch: %w", err)
	}
	return nil
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
