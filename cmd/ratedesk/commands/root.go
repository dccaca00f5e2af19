package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	baseURL string
	apiKey  string
	env     string
	format  string
	quiet   bool
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ratedesk",
	Short: "CLI tool for the insurance payout lookup service",
	Long: `Ratedesk is a command-line tool for the insurance payout lookup service.

It runs payout checks, lists dropdown values and RTO codes, and manages
rate-sheet import batches.

Examples:
  ratedesk check --state "Tamil Nadu" --category GCV --type "4 Wheeler Goods" --gvw 12
  ratedesk values vehicle_type --category PCV
  ratedesk rtos TN
  ratedesk batches
  ratedesk import rates.yaml --source monthly-sheet --publish`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Base URL of the ratedesk API")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Admin API key for batch operations")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "Named environment from ~/.ratedesk/config.yaml")
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
}
