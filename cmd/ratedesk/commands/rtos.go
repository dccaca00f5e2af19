package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/covernest/ratedesk/internal/cli"
	"github.com/covernest/ratedesk/internal/client"
)

var rtosCmd = &cobra.Command{
	Use:   "rtos <state>",
	Short: "List RTO codes for a state",
	Long: `List the RTO dropdown options for a state. States without configured
codes return an empty list.

Examples:
  ratedesk rtos TN
  ratedesk rtos "Tamil Nadu" --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state := args[0]

		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)
		opts, err := c.RTOs(context.Background(), state)
		if err != nil {
			return fmt.Errorf("failed to list RTO codes: %w", err)
		}

		if quiet {
			return nil
		}
		if len(opts) == 0 {
			fmt.Printf("No RTO codes configured for %s\n", state)
			return nil
		}

		labels := make([]string, 0, len(opts))
		for _, o := range opts {
			labels = append(labels, o.Label)
		}
		return cli.PrintValues("rtos", labels, cli.OutputFormat(format))
	},
}

func init() {
	rootCmd.AddCommand(rtosCmd)
}
