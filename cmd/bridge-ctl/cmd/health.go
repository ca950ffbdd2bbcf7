package cmd

import "github.com/spf13/cobra"

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Report the bridge's circuit-breaker status",
	RunE: func(cmd *cobra.Command, args []string) error {
		var out any
		if err := newClient().Get("/health", nil, &out); err != nil {
			return err
		}
		return printResult(out)
	},
}
