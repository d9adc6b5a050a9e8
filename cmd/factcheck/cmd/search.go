package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	ferrors "github.com/Aman-CERP/factcheck/internal/errors"
	"github.com/Aman-CERP/factcheck/internal/output"
	"github.com/Aman-CERP/factcheck/internal/session"
	"github.com/Aman-CERP/factcheck/internal/ui"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	mode      string
	page      int
	format    string // "text", "json"
	noSuggest bool
	noURLs    bool
}

func newSearchCmd(a *app) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search once and print a page of results",
		Long: `Search the collection once and print one page of results.

Results are fetched once and paged locally in pages of 5; --page selects which
page to print. Suggestions for related queries follow the results unless
--no-suggest is given.`,
		Example: `  factcheck search climate
  factcheck search "vaccine safety" --mode boolean --page 2
  factcheck search climate --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, a, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "Search mode: boolean, tfidf (default from config)")
	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "Page of results to print")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "Output format: text, json")
	cmd.Flags().BoolVar(&opts.noSuggest, "no-suggest", false, "Skip query suggestions")
	cmd.Flags().BoolVar(&opts.noURLs, "no-urls", false, "Hide result URLs")

	return cmd
}

func runSearch(cmd *cobra.Command, a *app, query string, opts searchOptions) error {
	mode, err := a.modeFlag(opts.mode)
	if err != nil {
		return err
	}
	if err := checkFormat(opts.format); err != nil {
		return err
	}
	if opts.page < 1 {
		return ferrors.ValidationError("--page must be at least 1", nil)
	}

	ctrl, err := a.newController(controllerOptions{noExpansions: opts.noSuggest})
	if err != nil {
		return err
	}

	sess := session.New(mode)
	searchErr := ctrl.Search(cmd.Context(), sess, query, mode)
	if searchErr != nil && sess.Status != session.StatusError {
		// Rejected before any request was made.
		return searchErr
	}
	ctrl.ChangePage(sess, opts.page)

	if opts.format == formatJSON {
		if err := output.New(cmd.OutOrStdout()).JSON(sess.Snapshot()); err != nil {
			return err
		}
		return searchErr
	}

	if searchErr != nil {
		return searchErr
	}
	return ui.RenderPlain(sess, ui.NewConfig(cmd.OutOrStdout(),
		ui.WithNoColor(a.cfg.UI.NoColor),
		ui.WithShowURLs(!opts.noURLs)))
}

func checkFormat(format string) error {
	if format != formatText && format != formatJSON {
		return ferrors.ValidationError("--format must be text or json, got "+format, nil)
	}
	return nil
}
