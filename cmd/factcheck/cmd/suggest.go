package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/factcheck/internal/expansion"
	"github.com/Aman-CERP/factcheck/internal/output"
)

func newSuggestCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "suggest <query>",
		Short: "List related query suggestions",
		Long: `Ask the backend's expansion endpoint for alternative queries.

Suggestions are de-duplicated ignoring case, and the query itself is left out.`,
		Example: `  factcheck suggest climat
  factcheck suggest vaccine --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest(cmd, a, strings.Join(args, " "), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text, json")

	return cmd
}

func runSuggest(cmd *cobra.Command, a *app, query string, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	c, err := a.newClient()
	if err != nil {
		return err
	}

	query = strings.TrimSpace(query)
	raw, err := c.FetchExpansions(cmd.Context(), query)
	if err != nil {
		return err
	}
	suggestions := expansion.Normalize(query, raw)

	if format == formatJSON {
		if suggestions == nil {
			suggestions = []string{}
		}
		return output.New(cmd.OutOrStdout()).JSON(map[string]any{
			"query":       query,
			"suggestions": suggestions,
		})
	}

	if len(suggestions) == 0 {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "No suggestions for %q\n", query)
		return err
	}
	for i, s := range suggestions {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, s); err != nil {
			return err
		}
	}
	return nil
}
