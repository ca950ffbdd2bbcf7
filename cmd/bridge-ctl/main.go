// Command bridge-ctl is a debug CLI for poking a running runtime-bridge
// instance by hand, the way cmd/gasoline-cmd is a companion CLI to its
// daemon. It is a plain HTTP client: every subcommand maps to one of the
// endpoints runtime-bridge registers (spec.md §6) and prints the decoded
// JSON response.
package main

import (
	"fmt"
	"os"

	"github.com/dev-bridge/engine-runtime-bridge/cmd/bridge-ctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "bridge-ctl:", err)
		os.Exit(1)
	}
}
