package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/factcheck/internal/client"
	"github.com/Aman-CERP/factcheck/internal/output"
	"github.com/Aman-CERP/factcheck/internal/results"
	"github.com/Aman-CERP/factcheck/internal/session"
	"github.com/Aman-CERP/factcheck/internal/ui"
)

func newCompareCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "compare <query>",
		Short: "Run a query in both modes and compare the rankings",
		Long: `Search the same query with boolean and TF-IDF ranking at the same time
and print the first page of each, followed by how many documents both
modes returned and a combined ranking (reciprocal rank fusion).`,
		Example: `  factcheck compare climate
  factcheck compare "mask mandate" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, a, strings.Join(args, " "), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text, json")

	return cmd
}

type compareOutput struct {
	Query  string                `json:"query"`
	Modes  []session.Snapshot    `json:"modes"`
	Shared []string              `json:"shared_urls"`
	Fused  []results.FusedResult `json:"fused"`
}

// fusedShown is how many combined results the text output lists.
const fusedShown = 5

func runCompare(cmd *cobra.Command, a *app, query string, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	ctrl, err := a.newController(controllerOptions{noExpansions: true})
	if err != nil {
		return err
	}

	// One session per mode; the controller keeps no per-session state, so
	// the searches can run side by side.
	sessions := make([]*session.Session, len(client.Modes))
	var g errgroup.Group
	for i, mode := range client.Modes {
		s := session.New(mode)
		sessions[i] = s
		g.Go(func() error {
			return ctrl.Search(cmd.Context(), s, query, mode)
		})
	}
	searchErr := g.Wait()
	for _, s := range sessions {
		if s.Status == session.StatusIdle {
			// Rejected before any request was made.
			return searchErr
		}
	}

	shared := sharedURLs(sessions)
	lists := make([][]results.SearchResult, len(sessions))
	for i, s := range sessions {
		lists[i] = s.Results.All()
	}
	fused := results.Fuse(results.DefaultRRFConstant, lists...)

	if format == formatJSON {
		out := compareOutput{Query: query, Shared: shared, Fused: fused}
		for _, s := range sessions {
			out.Modes = append(out.Modes, s.Snapshot())
		}
		if err := output.New(cmd.OutOrStdout()).JSON(out); err != nil {
			return err
		}
		return searchErr
	}

	uiCfg := ui.NewConfig(cmd.OutOrStdout(), ui.WithNoColor(a.cfg.UI.NoColor))
	for _, s := range sessions {
		if err := ui.RenderPlain(s, uiCfg); err != nil {
			return err
		}
		_, _ = io.WriteString(cmd.OutOrStdout(), "\n")
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Shared results: %d (boolean %d, tfidf %d)\n",
		len(shared), sessions[0].Results.Len(), sessions[1].Results.Len())
	if err != nil {
		return err
	}
	printFused(cmd.OutOrStdout(), fused)
	return searchErr
}

func printFused(w io.Writer, fused []results.FusedResult) {
	if len(fused) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w, "\nCombined ranking:")
	for i, f := range fused {
		if i == fusedShown {
			break
		}
		_, _ = fmt.Fprintf(w, "  %d. %s (%d/%d modes, %.4f)\n", i+1, f.Title, f.Lists, len(client.Modes), f.FusedScore)
	}
}

// sharedURLs returns, in first-session order, the URLs every session returned.
func sharedURLs(sessions []*session.Session) []string {
	counts := make(map[string]int)
	for _, s := range sessions {
		seen := make(map[string]bool)
		for _, r := range s.Results.All() {
			if r.URL != "" && !seen[r.URL] {
				seen[r.URL] = true
				counts[r.URL]++
			}
		}
	}

	shared := []string{}
	if len(sessions) == 0 {
		return shared
	}
	for _, r := range sessions[0].Results.All() {
		if counts[r.URL] == len(sessions) {
			shared = append(shared, r.URL)
			counts[r.URL] = 0
		}
	}
	return shared
}
