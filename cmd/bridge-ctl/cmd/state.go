package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	stateRef  string
	statePath string
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Read a node's engine-typed property state",
	RunE: func(cmd *cobra.Command, args []string) error {
		if stateRef == "" && statePath == "" {
			return fmt.Errorf("one of --ref or --path is required")
		}
		query := map[string]any{}
		if stateRef != "" {
			query["ref"] = stateRef
		}
		if statePath != "" {
			query["path"] = statePath
		}
		var out any
		if err := newClient().Get("/state", query, &out); err != nil {
			return err
		}
		return printResult(out)
	},
}

func init() {
	stateCmd.Flags().StringVar(&stateRef, "ref", "", "node ref from a prior snapshot")
	stateCmd.Flags().StringVar(&statePath, "path", "", "node path relative to the scene root, e.g. Level/Player")
}
