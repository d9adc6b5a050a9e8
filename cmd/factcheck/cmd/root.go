// Package cmd provides the CLI commands for factcheck.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/factcheck/internal/browser"
	"github.com/Aman-CERP/factcheck/internal/client"
	"github.com/Aman-CERP/factcheck/internal/config"
	ferrors "github.com/Aman-CERP/factcheck/internal/errors"
	"github.com/Aman-CERP/factcheck/internal/logging"
	"github.com/Aman-CERP/factcheck/internal/profiling"
	"github.com/Aman-CERP/factcheck/internal/session"
	"github.com/Aman-CERP/factcheck/internal/telemetry"
	"github.com/Aman-CERP/factcheck/pkg/version"
)

// app carries what the root command resolves before any subcommand runs.
type app struct {
	// Flags
	debug    bool
	baseURL  string
	noColor  bool
	profiles profiling.Options

	cfg      *config.Config
	// cfgErr is why the configuration fell back to defaults, if it did.
	cfgErr   error
	cleanups []func()

	recorder *telemetry.Recorder
	store    *telemetry.SQLiteStore
}

// browseFlushInterval is how often the browser persists search statistics.
const browseFlushInterval = 30 * time.Second

// NewRootCmd creates the root command for the factcheck CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "factcheck [query]",
		Short: "Search a fact-checking document collection",
		Long: `factcheck searches a document collection over HTTP using boolean or
TF-IDF ranking, pages through the results, and suggests related queries.

Run it without a subcommand on a terminal to open the interactive browser.`,
		Version:       version.Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, a, args, "")
		},
	}
	cmd.SetVersionTemplate("factcheck version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (~/.factcheck/logs/client.log)")
	cmd.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "Search backend URL (overrides config and environment)")
	cmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().StringVar(&a.profiles.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&a.profiles.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&a.profiles.Trace, "profile-trace", "", "Write execution trace to file")
	_ = cmd.PersistentFlags().MarkHidden("profile-trace")

	cmd.PersistentPreRunE = a.start
	cmd.PersistentPostRunE = func(*cobra.Command, []string) error {
		a.stop()
		return nil
	}

	cmd.AddCommand(newBrowseCmd(a))
	cmd.AddCommand(newSearchCmd(a))
	cmd.AddCommand(newGenericCmd(a))
	cmd.AddCommand(newCompareCmd(a))
	cmd.AddCommand(newSuggestCmd(a))
	cmd.AddCommand(newProbeCmd(a))
	cmd.AddCommand(newOpenCmd(browser.Open))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newStatsCmd(a))
	cmd.AddCommand(newDoctorCmd(a))
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeFakeCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx and prints any error.
func ExecuteContext(ctx context.Context) error {
	a := &app{}
	root := newRootCmd(a)
	err := root.ExecuteContext(ctx)
	// PersistentPostRunE is skipped when a command fails.
	a.stop()
	if err != nil {
		reportError(root, err)
	}
	return err
}

// reportError prints err the way the CLI formats every failure.
func reportError(cmd *cobra.Command, err error) {
	if _, ok := ferrors.As(err); ok {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), ferrors.FormatForCLI(err))
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
}

// start loads configuration, applies flags and sets up logging and profiling.
func (a *app) start(cmd *cobra.Command, _ []string) error {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	cfg, err := config.Load(wd)
	if err != nil {
		if cmd.Annotations["config"] != "optional" {
			return err
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: using defaults, configuration is invalid: %v\n", err)
		a.cfgErr = err
		cfg = config.NewConfig()
	}
	if a.baseURL != "" {
		cfg.Backend.BaseURL = a.baseURL
	}
	if a.noColor {
		cfg.UI.NoColor = true
	}
	if a.debug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	// The browser draws on the terminal, so its logs stay in the file.
	logCfg.WriteToStderr = a.debug && !isBrowse(cmd)
	logCfg.Stderr = cmd.ErrOrStderr()
	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil && a.debug {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: logging disabled: %v\n", err)
	}
	a.cleanups = append(a.cleanups, cleanup)

	slog.Debug("command_started",
		slog.String("command", cmd.CommandPath()),
		slog.String("version", version.Short()),
		slog.String("base_url", cfg.Backend.BaseURL))

	if a.profiles.Enabled() {
		prof, err := profiling.Start(a.profiles)
		if err != nil {
			return err
		}
		a.cleanups = append(a.cleanups, func() {
			if err := prof.Stop(); err != nil {
				slog.Warn("profile_write_failed", slog.String("error", err.Error()))
			}
		})
	}
	return nil
}

// stop runs cleanups in reverse order of registration.
func (a *app) stop() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
	a.cleanups = nil
	a.recorder, a.store = nil, nil
}

func isBrowse(cmd *cobra.Command) bool {
	return cmd.Name() == "browse" || !cmd.HasParent()
}

// newClient builds a backend client from the resolved configuration.
func (a *app) newClient() (*client.Client, error) {
	return client.New(a.cfg.ClientConfig())
}

type controllerOptions struct {
	noExpansions bool
	// interactive seeds the history from earlier runs and persists
	// statistics periodically instead of only on exit.
	interactive bool
}

// newController builds a session controller over a fresh client.
func (a *app) newController(opts controllerOptions) (*session.Controller, error) {
	c, err := a.newClient()
	if err != nil {
		return nil, err
	}
	cfg := session.Config{
		Limit:             a.cfg.Search.Limit,
		HistorySize:       a.cfg.Search.HistorySize,
		DisableExpansions: opts.noExpansions,
	}

	flushEvery := time.Duration(0)
	if opts.interactive {
		flushEvery = browseFlushInterval
	}
	if rec, store := a.openTelemetry(flushEvery); rec != nil {
		cfg.Recorder = rec
		if opts.interactive {
			recent, err := store.RecentHistory(cfg.HistorySize)
			if err != nil {
				slog.Warn("history_load_failed", slog.String("error", err.Error()))
			}
			cfg.InitialHistory = recent
		}
	}
	return session.NewController(c, cfg), nil
}

// openTelemetry opens the statistics store once per run. Failing to open it
// only disables recording.
func (a *app) openTelemetry(flushEvery time.Duration) (*telemetry.Recorder, *telemetry.SQLiteStore) {
	if a.cfg.Telemetry.Disabled {
		return nil, nil
	}
	if a.recorder != nil {
		return a.recorder, a.store
	}

	path := a.telemetryPath()
	store, err := telemetry.Open(path)
	if err != nil {
		slog.Warn("telemetry_disabled",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, nil
	}
	recCfg := telemetry.DefaultConfig()
	recCfg.FlushInterval = flushEvery
	rec := telemetry.NewRecorder(store, recCfg)

	a.cleanups = append(a.cleanups, func() {
		if err := rec.Close(); err != nil {
			slog.Warn("telemetry_flush_failed", slog.String("error", err.Error()))
		}
		_ = store.Close()
	})
	a.recorder, a.store = rec, store
	return rec, store
}

func (a *app) telemetryPath() string {
	if a.cfg.Telemetry.Path != "" {
		return a.cfg.Telemetry.Path
	}
	return telemetry.DefaultPath()
}

// modeFlag resolves an explicit --mode value or falls back to the configured
// default.
func (a *app) modeFlag(value string) (client.Mode, error) {
	if value == "" {
		return a.cfg.Mode(), nil
	}
	m, err := client.ParseMode(value)
	if err != nil {
		return "", ferrors.ValidationError(err.Error(), nil)
	}
	return m, nil
}
