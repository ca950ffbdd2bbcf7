package cmd

import "github.com/spf13/cobra"

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show scene path, viewport, fps, and clock state",
	RunE: func(cmd *cobra.Command, args []string) error {
		var out any
		if err := newClient().Get("/info", nil, &out); err != nil {
			return err
		}
		return printResult(out)
	},
}
