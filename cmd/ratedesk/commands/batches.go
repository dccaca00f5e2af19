package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/covernest/ratedesk/internal/cli"
	"github.com/covernest/ratedesk/internal/client"
)

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "List rate-sheet import batches",
	Long: `List all import batches, newest first.

Examples:
  ratedesk batches
  ratedesk batches --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)
		batches, err := c.ListBatches(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list batches: %w", err)
		}

		if quiet {
			return nil
		}
		if len(batches) == 0 {
			fmt.Println("No batches found")
			return nil
		}
		return cli.PrintBatches(batches, cli.OutputFormat(format))
	},
}

func init() {
	rootCmd.AddCommand(batchesCmd)
}
