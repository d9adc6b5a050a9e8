package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/factcheck/internal/browser"
	ferrors "github.com/Aman-CERP/factcheck/internal/errors"
	"github.com/Aman-CERP/factcheck/internal/session"
	"github.com/Aman-CERP/factcheck/internal/ui"
)

func newBrowseCmd(a *app) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "browse [query]",
		Short: "Open the interactive search browser",
		Long: `Open the interactive search browser.

Type a query and press enter to search. Tab switches between boolean and
TF-IDF ranking, arrow keys page through results, digits pick a suggested
query and o opens the selected result in your web browser.

When output is not a terminal the query is searched once and printed.`,
		Example: `  factcheck browse
  factcheck browse "climate change" --mode boolean`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, a, args, mode)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Initial search mode: boolean, tfidf")

	return cmd
}

func runBrowse(cmd *cobra.Command, a *app, args []string, modeValue string) error {
	mode, err := a.modeFlag(modeValue)
	if err != nil {
		return err
	}
	query := strings.Join(args, " ")

	uiCfg := ui.NewConfig(cmd.OutOrStdout(),
		ui.WithForcePlain(a.cfg.UI.Plain),
		ui.WithNoColor(a.cfg.UI.NoColor))

	if !ui.Interactive(uiCfg) {
		if strings.TrimSpace(query) == "" {
			return ferrors.ValidationError("the interactive browser needs a terminal", nil).
				WithSuggestion("Run 'factcheck search <query>' for plain output")
		}
		return runSearch(cmd, a, query, searchOptions{mode: modeValue, page: 1, format: formatText})
	}

	ctrl, err := a.newController(controllerOptions{interactive: true})
	if err != nil {
		return err
	}
	return ui.RunBrowser(cmd.Context(), ctrl, session.New(mode), ui.BrowserOptions{
		Output:       cmd.OutOrStdout(),
		NoColor:      uiCfg.NoColor,
		InitialQuery: query,
		Open:         browser.Open,
	})
}
