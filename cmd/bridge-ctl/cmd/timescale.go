package cmd

import (
	"strconv"

	"github.com/spf13/cobra"
)

var timescaleCmd = &cobra.Command{
	Use:   "timescale <factor>",
	Short: "Set the engine clock's time scale",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scale, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return err
		}
		var out any
		if err := newClient().Post("/timescale", map[string]any{"scale": scale}, &out); err != nil {
			return err
		}
		return printResult(out)
	},
}
