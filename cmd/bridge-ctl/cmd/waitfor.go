package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var (
	waitCondition string
	waitRef       string
	waitPath      string
	waitProperty  string
	waitValueRaw  string
	waitSignal    string
	waitTimeout   float64
	waitPoll      float64
)

var waitForCmd = &cobra.Command{
	Use:   "wait-for",
	Short: "Block until a property, signal, or node-existence condition is met",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]any{"condition": waitCondition}
		if waitRef != "" {
			params["ref"] = waitRef
		}
		if waitPath != "" {
			params["path"] = waitPath
		}
		if waitProperty != "" {
			params["property"] = waitProperty
		}
		if waitSignal != "" {
			params["signal"] = waitSignal
		}
		if waitTimeout > 0 {
			params["timeout"] = waitTimeout
		}
		if waitPoll > 0 {
			params["poll_interval"] = waitPoll
		}
		if waitValueRaw != "" {
			var v any
			if err := json.Unmarshal([]byte(waitValueRaw), &v); err != nil {
				v = waitValueRaw
			}
			params["value"] = v
		}
		var out any
		if err := newClient().Post("/wait_for", params, &out); err != nil {
			return err
		}
		return printResult(out)
	},
}

func init() {
	waitForCmd.Flags().StringVar(&waitCondition, "condition", "", "node_exists, node_freed, property_equals, property_greater, property_less, or signal (required)")
	waitForCmd.Flags().StringVar(&waitRef, "ref", "", "target node ref")
	waitForCmd.Flags().StringVar(&waitPath, "path", "", "target node path")
	waitForCmd.Flags().StringVar(&waitProperty, "property", "", "property name, for property_equals/greater/less")
	waitForCmd.Flags().StringVar(&waitValueRaw, "value", "", "comparison value as JSON, for property_equals/greater/less")
	waitForCmd.Flags().StringVar(&waitSignal, "signal", "", "signal name, for signal")
	waitForCmd.Flags().Float64Var(&waitTimeout, "timeout", 0, "timeout in seconds")
	waitForCmd.Flags().Float64Var(&waitPoll, "poll-interval", 0, "poll interval in seconds")
	waitForCmd.MarkFlagRequired("condition")
}
