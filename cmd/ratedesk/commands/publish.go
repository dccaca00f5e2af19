package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/covernest/ratedesk/internal/cli"
	"github.com/covernest/ratedesk/internal/client"
)

var publishCmd = &cobra.Command{
	Use:   "publish <batch-id>",
	Short: "Publish a staged batch",
	Long: `Mark a staged batch live. Publishing atomically swaps the serving
snapshot; in-flight queries keep the batch they started with.

Example:
  ratedesk publish 3f6b1c9a-5cc9-4f0e-9a8e-1f2d3c4b5a69`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)
		res, err := c.PublishBatch(context.Background(), id)
		if err != nil {
			return fmt.Errorf("publish failed: %w", err)
		}

		if !quiet {
			fmt.Printf("Published batch %s: %d record(s), %d skipped, etag %s\n",
				id, res.Records, res.Skipped, res.ETag)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}
