package cmd

import "github.com/spf13/cobra"

var (
	keyName     string
	keyAction   string
	keyDuration float64
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Inject a keyboard event",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]any{"key": keyName}
		if keyAction != "" {
			params["action"] = keyAction
		}
		if keyDuration > 0 {
			params["duration"] = keyDuration
		}
		var out any
		if err := newClient().Post("/key", params, &out); err != nil {
			return err
		}
		return printResult(out)
	},
}

func init() {
	keyCmd.Flags().StringVar(&keyName, "key", "", "key name, e.g. space, enter, a (required)")
	keyCmd.Flags().StringVar(&keyAction, "action", "", "press, release, tap, or hold (default tap)")
	keyCmd.Flags().Float64Var(&keyDuration, "duration", 0, "hold duration in seconds, for hold")
	keyCmd.MarkFlagRequired("key")
}
