// Command gateway runs the Gateway: the HTTP surface spec §6 describes,
// backed by the Inventory resilience stack (C1-C7) and the order pipeline
// (C8-C12).
package main

import (
	"fmt"
	"os"

	"github.com/vitaliisemenov/netgate/cmd/gateway/cmd"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	cmd.SetVersion(version, buildTime, gitCommit)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
