package cmd

import "github.com/spf13/cobra"

var (
	snapshotRoot              string
	snapshotDepth             int
	snapshotIncludeScreenshot bool
	snapshotAnnotate          bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch a scene-tree snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := map[string]any{}
		if snapshotRoot != "" {
			query["root"] = snapshotRoot
		}
		if snapshotDepth > 0 {
			query["depth"] = snapshotDepth
		}
		if snapshotIncludeScreenshot {
			query["include_screenshot"] = true
		}
		if snapshotAnnotate {
			query["annotate"] = true
		}
		var out any
		if err := newClient().Get("/snapshot", query, &out); err != nil {
			return err
		}
		return printResult(out)
	},
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotRoot, "root", "", "ref or path to use as the snapshot root")
	snapshotCmd.Flags().IntVar(&snapshotDepth, "depth", 0, "traversal depth bound (0 = engine default)")
	snapshotCmd.Flags().BoolVar(&snapshotIncludeScreenshot, "screenshot", false, "include a viewport screenshot")
	snapshotCmd.Flags().BoolVar(&snapshotAnnotate, "annotate", false, "draw node-ref label overlays on the screenshot")
}
