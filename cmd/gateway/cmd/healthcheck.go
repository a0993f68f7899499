package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var healthcheckURL string

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "One-shot probe against a running Gateway (for container HEALTHCHECK)",
	Long: `healthcheck issues a single GET against a running Gateway's /health
endpoint and exits 0 if it reports 200, 1 otherwise. Intended for a
Dockerfile HEALTHCHECK instruction rather than interactive use.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: 5 * time.Second}
		resp, err := client.Get(healthcheckURL)
		if err != nil {
			return fmt.Errorf("healthcheck: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("healthcheck: gateway reported status %d", resp.StatusCode)
		}
		return nil
	},
}

func init() {
	healthcheckCmd.Flags().StringVar(&healthcheckURL, "url", "http://localhost:8080/health", "URL of the running Gateway's health endpoint")
}
