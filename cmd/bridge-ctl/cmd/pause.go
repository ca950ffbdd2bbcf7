package cmd

import (
	"strconv"

	"github.com/spf13/cobra"
)

var pauseCmd = &cobra.Command{
	Use:   "pause [true|false]",
	Short: "Pause or unpause the engine clock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paused, err := strconv.ParseBool(args[0])
		if err != nil {
			return err
		}
		var out any
		if err := newClient().Post("/pause", map[string]any{"paused": paused}, &out); err != nil {
			return err
		}
		return printResult(out)
	},
}
