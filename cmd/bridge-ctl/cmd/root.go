package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dev-bridge/engine-runtime-bridge/cmd/bridge-ctl/client"
)

var (
	host    string
	port    int
	timeout time.Duration
	rawOut  bool
)

var rootCmd = &cobra.Command{
	Use:   "bridge-ctl",
	Short: "Debug client for the engine runtime bridge",
	Long:  `bridge-ctl talks to a running runtime-bridge instance over HTTP for manual inspection and poking during development.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "127.0.0.1", "runtime bridge host")
	rootCmd.PersistentFlags().IntVar(&port, "port", 7777, "runtime bridge port")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")
	rootCmd.PersistentFlags().BoolVar(&rawOut, "raw", false, "print raw JSON instead of pretty-printed")

	rootCmd.AddCommand(
		healthCmd,
		consoleCmd,
		snapshotCmd,
		stateCmd,
		infoCmd,
		clickCmd,
		keyCmd,
		waitForCmd,
		pauseCmd,
		timescaleCmd,
	)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newClient() *client.Client {
	return client.New(host, port, timeout)
}

// printResult renders a decoded JSON value either raw or pretty-printed,
// mirroring gasoline-cmd's --format json/human split without needing a
// separate formatter package for a single-purpose debug tool.
func printResult(v any) error {
	indent := ""
	if !rawOut {
		indent = "  "
	}
	buf, err := json.MarshalIndent(v, "", indent)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Println(string(buf))
	return nil
}
