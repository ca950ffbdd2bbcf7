package cmd

import "github.com/spf13/cobra"

var (
	clickX, clickY float64
	clickButton    int
	clickDouble    bool
)

var clickCmd = &cobra.Command{
	Use:   "click",
	Short: "Inject a mouse click at viewport coordinates",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]any{
			"x":      clickX,
			"y":      clickY,
			"button": clickButton,
			"double": clickDouble,
		}
		var out any
		if err := newClient().Post("/click", params, &out); err != nil {
			return err
		}
		return printResult(out)
	},
}

func init() {
	clickCmd.Flags().Float64Var(&clickX, "x", 0, "viewport x coordinate")
	clickCmd.Flags().Float64Var(&clickY, "y", 0, "viewport y coordinate")
	clickCmd.Flags().IntVar(&clickButton, "button", 0, "mouse button index (0 = left)")
	clickCmd.Flags().BoolVar(&clickDouble, "double", false, "send a double click")
}
