package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/factcheck/internal/logging"
	"github.com/Aman-CERP/factcheck/internal/output"
	"github.com/Aman-CERP/factcheck/internal/preflight"
)

type doctorOptions struct {
	verbose    bool
	jsonOutput bool
	timeout    time.Duration
}

// errCheckFailed is returned when a required check fails.
var errCheckFailed = errors.New("system check failed")

func newDoctorCmd(a *app) *cobra.Command {
	var opts doctorOptions

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and backend connectivity",
		Long: `Run diagnostics to ensure factcheck can search.

Checks:
  - Configuration validity
  - Backend reachability (probe endpoint)
  - Boolean and TF-IDF search endpoints
  - Suggestion endpoint (warning only)
  - Log and data directory permissions
  - Disk space

Use --verbose for detailed diagnostic information.
Use --json for machine-readable output.`,
		Example: `  factcheck doctor
  factcheck doctor --verbose --base-url http://search.internal:8080
  factcheck doctor --json`,
		Args:        cobra.NoArgs,
		Annotations: configOptional,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, a, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show detailed diagnostic info")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", preflight.DefaultTimeout, "Deadline for each backend check")

	return cmd
}

// doctorOutput is the JSON output of the doctor command.
type doctorOutput struct {
	Status   string                  `json:"status"`
	BaseURL  string                  `json:"base_url"`
	Checks   []preflight.CheckResult `json:"checks"`
	Warnings []string                `json:"warnings,omitempty"`
	Errors   []string                `json:"errors,omitempty"`
}

func runDoctor(cmd *cobra.Command, a *app, opts doctorOptions) error {
	checkerOpts := []preflight.Option{
		preflight.WithVerbose(opts.verbose),
		preflight.WithOutput(cmd.OutOrStdout()),
		preflight.WithTimeout(opts.timeout),
	}
	c, err := a.newClient()
	if err == nil {
		checkerOpts = append(checkerOpts, preflight.WithBackend(c))
	}
	checker := preflight.New(checkerOpts...)

	dataDir := filepath.Dir(a.telemetryPath())
	baseURL := a.cfg.Backend.BaseURL
	var lastPassed time.Time
	if !preflight.NeedsCheck(dataDir, baseURL) {
		m, _ := preflight.ReadMarker(dataDir)
		lastPassed = m.CheckedAt
	}

	results := checker.RunAll(cmd.Context(), preflight.Targets{
		ConfigErr: errors.Join(a.cfgErr, err),
		LogDir:    logging.DefaultLogDir(),
		DataDir:   dataDir,
	})
	failed := checker.HasCriticalFailures(results)
	var markErr error
	if failed {
		markErr = preflight.ClearMarker(dataDir)
	} else {
		markErr = preflight.MarkPassed(dataDir, baseURL)
	}
	if markErr != nil {
		slog.Warn("preflight_marker_failed", slog.String("error", markErr.Error()))
	}

	if opts.jsonOutput {
		errs, warnings := checker.Problems(results)
		if err := output.New(cmd.OutOrStdout()).JSON(doctorOutput{
			Status:   checker.SummaryStatus(results),
			BaseURL:  baseURL,
			Checks:   results,
			Warnings: warnings,
			Errors:   errs,
		}); err != nil {
			return err
		}
	} else {
		checker.PrintResults(results)
		if !lastPassed.IsZero() {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nLast successful check: %s ago\n",
				time.Since(lastPassed).Round(time.Second))
		}
	}

	if failed {
		return errCheckFailed
	}
	return nil
}
