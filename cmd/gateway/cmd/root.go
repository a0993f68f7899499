package cmd

import (
	"github.com/spf13/cobra"
)

var (
	version   string
	buildTime string
	gitCommit string

	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Netgate order gateway",
	Long: `Gateway fronts an Inventory system with a resilient, multi-tenant
order API: circuit breaker, retry, and two layers of caching protect the
upstream, while the order pipeline validates, transforms, and tracks each
site/device order through its workflow.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion records build metadata for the version subcommand.
func SetVersion(v, bt, gc string) {
	version = v
	buildTime = bt
	gitCommit = gc
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file (optional; env vars and defaults apply otherwise)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthcheckCmd)
	rootCmd.AddCommand(versionCmd)
}
