package cmd

import "github.com/spf13/cobra"

var consoleLines int

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Tail the engine's console log",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := map[string]any{}
		if consoleLines > 0 {
			query["lines"] = consoleLines
		}
		var out any
		if err := newClient().Get("/console", query, &out); err != nil {
			return err
		}
		return printResult(out)
	},
}

func init() {
	consoleCmd.Flags().IntVar(&consoleLines, "lines", 0, "number of trailing lines to show (0 = all buffered)")
}
