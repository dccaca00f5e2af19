package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/covernest/ratedesk/internal/cli"
	"github.com/covernest/ratedesk/internal/client"
)

var (
	valuesState    string
	valuesCategory string
	valuesType     string
	valuesFuel     string
	valuesMake     string
)

var valuesCmd = &cobra.Command{
	Use:   "values <field>",
	Short: "List distinct dropdown values for a field",
	Long: `List the distinct values of one query field, narrowed by the filters
already chosen.

Examples:
  ratedesk values state
  ratedesk values vehicle_type --category PCV
  ratedesk values model --make Tata`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		field := args[0]

		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)
		values, err := c.Values(context.Background(), field, map[string]string{
			"state":            valuesState,
			"vehicle_category": valuesCategory,
			"vehicle_type":     valuesType,
			"fuel_type":        valuesFuel,
			"make":             valuesMake,
		})
		if err != nil {
			return fmt.Errorf("failed to list values: %w", err)
		}

		if quiet {
			return nil
		}
		if len(values) == 0 {
			fmt.Println("No values found")
			return nil
		}
		return cli.PrintValues(field, values, cli.OutputFormat(format))
	},
}

func init() {
	rootCmd.AddCommand(valuesCmd)

	valuesCmd.Flags().StringVar(&valuesState, "state", "", "Filter by state")
	valuesCmd.Flags().StringVar(&valuesCategory, "category", "", "Filter by vehicle category")
	valuesCmd.Flags().StringVar(&valuesType, "type", "", "Filter by vehicle type")
	valuesCmd.Flags().StringVar(&valuesFuel, "fuel", "", "Filter by fuel type")
	valuesCmd.Flags().StringVar(&valuesMake, "make", "", "Filter by make")
}
