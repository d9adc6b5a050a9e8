package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/factcheck/internal/output"
)

func newProbeCmd(a *app) *cobra.Command {
	var field string

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Send a diagnostic request to the backend",
		Long: `POST {"field": ...} to the backend's probe endpoint and print the
JSON it answers with. Useful to check connectivity and configuration.`,
		Example: `  factcheck probe
  factcheck probe --field ping --base-url http://search.internal:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.newClient()
			if err != nil {
				return err
			}
			body, err := c.Probe(cmd.Context(), field)
			if err != nil {
				return err
			}
			return output.New(cmd.OutOrStdout()).RawJSON(body)
		},
	}

	cmd.Flags().StringVar(&field, "field", "ping", "Value of the probe request's field")

	return cmd
}
