package cmd

import (
	"regexp"

	"github.com/spf13/cobra"

	ferrors "github.com/Aman-CERP/factcheck/internal/errors"
	"github.com/Aman-CERP/factcheck/internal/logging"
	"github.com/Aman-CERP/factcheck/internal/ui"
)

type logsOptions struct {
	lines   int
	follow  bool
	level   string
	pattern string
	session string
	file    string
}

func newLogsCmd() *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the client log",
		Long: `Show recent entries of ~/.factcheck/logs/client.log.

Every search is logged with the session ID shown by 'search --format json',
so --session narrows the output to one browsing session.`,
		Example: `  factcheck logs
  factcheck logs -n 100 --level warn
  factcheck logs --session 0f1e2d3c -f
  factcheck logs --grep 'backend_request'`,
		Args:        cobra.NoArgs,
		Annotations: configOptional,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Keep printing new entries")
	cmd.Flags().StringVar(&opts.level, "level", "", "Minimum level: debug, info, warn, error")
	cmd.Flags().StringVar(&opts.pattern, "grep", "", "Only lines matching this regular expression")
	cmd.Flags().StringVar(&opts.session, "session", "", "Only entries of this session ID (prefix)")
	cmd.Flags().StringVar(&opts.file, "file", "", "Log file to read (default: client.log)")

	return cmd
}

func runLogs(cmd *cobra.Command, opts logsOptions) error {
	path, err := logging.FindLogFile(opts.file)
	if err != nil {
		return ferrors.New(ferrors.ErrCodeConfigNotFound, err.Error(), err).
			WithSuggestion("Run a search first, or pass --file")
	}

	viewerCfg := logging.ViewerConfig{
		Level:     opts.level,
		SessionID: opts.session,
		NoColor:   ui.NewConfig(cmd.OutOrStdout()).NoColor,
	}
	if opts.pattern != "" {
		re, err := regexp.Compile(opts.pattern)
		if err != nil {
			return ferrors.ValidationError("invalid --grep pattern", err)
		}
		viewerCfg.Pattern = re
	}

	viewer := logging.NewViewer(viewerCfg, cmd.OutOrStdout())
	entries, err := viewer.Tail(path, opts.lines)
	if err != nil {
		return err
	}
	viewer.Print(entries)

	if !opts.follow {
		return nil
	}

	ch := make(chan logging.LogEntry, 64)
	errCh := make(chan error, 1)
	go func() {
		errCh <- viewer.Follow(cmd.Context(), path, ch)
	}()
	for {
		select {
		case entry := <-ch:
			viewer.Print([]logging.LogEntry{entry})
		case err := <-errCh:
			return err
		}
	}
}
