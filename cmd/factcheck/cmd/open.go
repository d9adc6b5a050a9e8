package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/factcheck/internal/output"
)

func newOpenCmd(open func(string) error) *cobra.Command {
	return &cobra.Command{
		Use:   "open <url>",
		Short: "Open a result URL in the web browser",
		Long:  `Open an http or https URL, such as a search result link, in the system web browser.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := open(args[0]); err != nil {
				return err
			}
			output.New(cmd.OutOrStdout()).Successf("Opened %s", args[0])
			return nil
		},
	}
}
