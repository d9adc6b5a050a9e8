package cmd

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/factcheck/internal/client"
	"github.com/Aman-CERP/factcheck/internal/output"
	"github.com/Aman-CERP/factcheck/internal/results"
	"github.com/Aman-CERP/factcheck/internal/ui"
)

type genericOptions struct {
	year   string
	page   int
	limit  int
	format string
}

func newGenericCmd(a *app) *cobra.Command {
	var opts genericOptions

	cmd := &cobra.Command{
		Use:   "generic <query>",
		Short: "Search the generic endpoint, optionally by year",
		Long: `Query the backend's generic /search endpoint, which takes an optional
year filter and server-side paging. Results are printed as returned.`,
		Example: `  factcheck generic election --year 2020
  factcheck generic election --page 2 --limit 20 --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGeneric(cmd, a, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.year, "year", "y", "", "Only documents from this year")
	cmd.Flags().IntVarP(&opts.page, "page", "p", 0, "Server-side page (omitted when 0)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Server-side limit (omitted when 0)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "Output format: text, json")

	return cmd
}

type genericOutput struct {
	Query   string                 `json:"query"`
	Year    string                 `json:"year,omitempty"`
	Results []results.SearchResult `json:"results"`
}

func runGeneric(cmd *cobra.Command, a *app, query string, opts genericOptions) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}
	c, err := a.newClient()
	if err != nil {
		return err
	}

	found, err := c.SearchGeneric(cmd.Context(), query, client.GenericOptions{
		Year:  opts.year,
		Page:  opts.page,
		Limit: opts.limit,
	})
	if err != nil {
		return err
	}

	if opts.format == formatJSON {
		if found == nil {
			found = []results.SearchResult{}
		}
		return output.New(cmd.OutOrStdout()).JSON(genericOutput{Query: query, Year: opts.year, Results: found})
	}

	title := "Search Results"
	if opts.year != "" {
		title += " (" + opts.year + ")"
	}
	uiCfg := ui.NewConfig(cmd.OutOrStdout(), ui.WithNoColor(a.cfg.UI.NoColor))
	_, err = io.WriteString(cmd.OutOrStdout(), ui.RenderList(title, found, "", ui.GetStyles(uiCfg.NoColor), ui.RenderOptions{
		NoColor:  uiCfg.NoColor,
		ShowURLs: true,
		Selected: -1,
	}))
	return err
}
