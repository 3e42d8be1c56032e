package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/loykin/airlaunch/internal/config"
	"github.com/loykin/airlaunch/internal/launcher"
	"github.com/loykin/airlaunch/internal/probe"
	"github.com/loykin/airlaunch/internal/readiness"
	"github.com/loykin/airlaunch/pkg/client"
)

func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	root := createRootCommand(globalFlags)
	root.AddCommand(
		createProbeCommand(globalFlags),
		createConfigCommand(globalFlags),
		createStatusCommand(),
		createVersionCommand(),
	)
	return root
}

func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "airlaunch",
		Short: "Start a backend, wait for its port, then open the app",
		Long: `airlaunch starts the backend process, polls its TCP port until it accepts
connections, and then runs the application shell (a desktop window, a
terminal UI, or a headless wait).

If the backend never becomes reachable a single diagnostic line is printed
and the shell starts anyway, unless --require-backend is set.

Examples:
  airlaunch                                   # go run main.go in ./backend, GUI shell
  airlaunch --workdir ../src-tauri/backend --shell tui
  airlaunch --backend-cmd "./server" --probe-address 127.0.0.1:9000 --stop-on-exit
  airlaunch probe --probe-address 127.0.0.1:8080`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			return runLaunch(cmd, cfg)
		},
	}
	flags.register(root.PersistentFlags())
	return root
}

func loadConfig(cmd *cobra.Command, flags *GlobalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.ConfigPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func createProbeCommand(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Wait for the backend port without spawning anything",
		Long: `Run only the readiness poll against the configured probe. The exit status is
0 when the backend became reachable and 1 otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			p, err := probe.New(cfg.Readiness.Config)
			if err != nil {
				return err
			}
			w := readiness.Waiter{
				Probe:       p,
				MaxAttempts: cfg.Readiness.MaxAttempts,
				Interval:    cfg.Readiness.Interval,
			}
			res := w.Wait(cmd.Context())
			if res.Interrupted() {
				return res.LastErr
			}
			if !res.Ready {
				return fmt.Errorf("%s: %w after %d checks", launcher.DiagnosticLine(p), launcher.ErrBackendNotReady, res.Attempts)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s ready after %d checks (%s)\n",
				p.Describe(), res.Attempts, res.Elapsed.Round(time.Millisecond))
			return nil
		},
	}
}

func createConfigCommand(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}
	initFlags := &ConfigInitFlags{}
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration (TOML unless the path says otherwise)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Name + ".toml"
			if len(args) == 1 {
				path = args[0]
			}
			cfg := config.Default()
			if err := cfg.WriteFile(path, initFlags.Force); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&initFlags.Force, "force", false, "overwrite an existing file")

	showFlags := &ConfigShowFlags{}
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.ConfigPath, cmd.Flags())
			if err != nil {
				return err
			}
			return cfg.Encode(cmd.OutOrStdout(), showFlags.Format)
		},
	}
	showCmd.Flags().StringVar(&showFlags.Format, "format", "toml", "output format: toml, yaml or json")

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func createStatusCommand() *cobra.Command {
	flags := &StatusFlags{}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query the status API of a running launcher",
		Long: `Query a launcher started with --status-listen. The exit status is 0 when the
backend is ready and running, 1 otherwise.

Examples:
  airlaunch status --url http://127.0.0.1:9090
  airlaunch status --url http://127.0.0.1:9090 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(client.Config{BaseURL: flags.URL, Timeout: flags.Timeout})
			snap, err := c.Status(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flags.JSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(snap); err != nil {
					return err
				}
			} else {
				_, _ = fmt.Fprintf(out, "backend:   %s\n", snap.BackendLine())
				_, _ = fmt.Fprintf(out, "readiness: %s\n", snap.ReadinessLine())
				_, _ = fmt.Fprintf(out, "usage:     %s\n", snap.UsageLine())
				_, _ = fmt.Fprintf(out, "shell:     %s\n", snap.Shell)
			}
			if !snap.Healthy() {
				return errors.New("backend is not healthy")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.URL, "url", client.DefaultConfig().BaseURL, "base URL of the status API")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", client.DefaultConfig().Timeout, "request timeout")
	cmd.Flags().BoolVar(&flags.JSON, "json", false, "print the raw status JSON")
	return cmd
}

func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "airlaunch %s\n", version)
		},
	}
}
