package cmd

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	ferrors "github.com/Aman-CERP/factcheck/internal/errors"
	"github.com/Aman-CERP/factcheck/internal/output"
	"github.com/Aman-CERP/factcheck/internal/telemetry"
)

type statsOptions struct {
	jsonOutput bool
	days       int
	limit      int
}

func newStatsCmd(a *app) *cobra.Command {
	var opts statsOptions

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show local search statistics",
		Long: `Display statistics about your searches on this machine:
  - Searches per mode
  - Top query terms
  - Zero-result queries
  - Latency distribution
  - Recent queries

Nothing leaves this machine. Set telemetry.disabled or FACTCHECK_NO_TELEMETRY=1
to stop recording.`,
		Example: `  factcheck stats
  factcheck stats --days 30 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, a, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().IntVar(&opts.days, "days", 7, "Number of days to include")
	cmd.Flags().IntVar(&opts.limit, "limit", 10, "Entries per list")

	return cmd
}

func runStats(cmd *cobra.Command, a *app, opts statsOptions) error {
	if opts.days < 1 {
		return ferrors.ValidationError(fmt.Sprintf("--days must be positive, got %d", opts.days), nil)
	}
	if opts.limit < 1 {
		return ferrors.ValidationError(fmt.Sprintf("--limit must be positive, got %d", opts.limit), nil)
	}

	path := a.telemetryPath()
	if !fileExists(path) {
		return ferrors.New(ferrors.ErrCodeConfigNotFound, "no search statistics recorded yet", nil).
			WithDetail("path", path).
			WithSuggestion("Run a search first")
	}

	store, err := telemetry.Open(path)
	if err != nil {
		return ferrors.InternalError("failed to open statistics database", err).
			WithDetail("path", path)
	}
	defer func() { _ = store.Close() }()

	report, err := telemetry.LoadReport(store, opts.days, opts.limit, time.Now())
	if err != nil {
		return ferrors.InternalError("failed to read statistics", err)
	}

	if opts.jsonOutput {
		return output.New(cmd.OutOrStdout()).JSON(report)
	}
	if a.cfg.Telemetry.Disabled {
		output.New(cmd.ErrOrStderr()).Warning("Recording is disabled; showing earlier data")
	}
	printStats(cmd.OutOrStdout(), report)
	return nil
}

func printStats(w io.Writer, r *telemetry.Report) {
	out := output.New(w)

	_, _ = fmt.Fprintf(w, "Search Statistics (%s to %s)\n", r.From, r.To)
	_, _ = fmt.Fprintln(w, "================")
	out.Newline()

	_, _ = fmt.Fprintf(w, "Total Searches: %d\n", r.TotalSearches())
	for _, mode := range slices.Sorted(maps.Keys(r.ModeCounts)) {
		out.Field(mode, r.ModeCounts[mode])
	}
	out.Newline()

	if len(r.TopTerms) > 0 {
		_, _ = fmt.Fprintln(w, "Top Query Terms:")
		for i, tc := range r.TopTerms {
			_, _ = fmt.Fprintf(w, "  %d. %s (%d)\n", i+1, tc.Term, tc.Count)
		}
	} else {
		_, _ = fmt.Fprintln(w, "Top Query Terms: (none recorded yet)")
	}
	out.Newline()

	if len(r.ZeroResultQueries) > 0 {
		_, _ = fmt.Fprintln(w, "Recent Zero-Result Queries:")
		for _, q := range r.ZeroResultQueries {
			_, _ = fmt.Fprintf(w, "  - %q\n", q)
		}
	} else {
		_, _ = fmt.Fprintln(w, "Recent Zero-Result Queries: (none)")
	}
	out.Newline()

	if len(r.LatencyDistribution) > 0 {
		_, _ = fmt.Fprintln(w, "Latency Distribution:")
		for _, b := range telemetry.LatencyBuckets {
			if count, ok := r.LatencyDistribution[b]; ok {
				out.Field(latencyLabels[b], count)
			}
		}
		out.Newline()
	}

	if len(r.RecentQueries) > 0 {
		_, _ = fmt.Fprintln(w, "Recent Queries:")
		for _, q := range r.RecentQueries {
			_, _ = fmt.Fprintf(w, "  %s\n", q)
		}
	}
}

var latencyLabels = map[telemetry.LatencyBucket]string{
	telemetry.BucketP50:   "<50ms",
	telemetry.BucketP200:  "50-200ms",
	telemetry.BucketP500:  "200-500ms",
	telemetry.BucketP2000: "500ms-2s",
	telemetry.BucketSlow:  ">2s",
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
