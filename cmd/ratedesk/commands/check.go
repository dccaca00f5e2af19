package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/covernest/ratedesk/internal/cli"
	"github.com/covernest/ratedesk/internal/client"
	"github.com/covernest/ratedesk/internal/lookup"
	"github.com/covernest/ratedesk/internal/rates"
)

var checkQuery rates.Query

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a payout check",
	Long: `Run one payout lookup and print the ranked insurer list.

Examples:
  ratedesk check --state "Tamil Nadu" --rto "TN-01" --category "Private Car" --fuel Petrol
  ratedesk check --state Kerala --category GCV --type "4 Wheeler Goods" --gvw 12 --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)
		res, err := c.CheckPayout(context.Background(), checkQuery)
		if err != nil {
			return fmt.Errorf("payout check failed: %w", err)
		}

		if quiet {
			return nil
		}

		switch res.Status {
		case lookup.StatusSuccess:
			if verbose {
				fmt.Printf("Matched %d compan(ies)\n", res.TotalCompanies)
			}
			return cli.PrintEntries(res.Payouts, cli.OutputFormat(format))
		case lookup.StatusNoData:
			fmt.Println(res.Message)
			return nil
		default:
			return fmt.Errorf("%s", res.Message)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	f := checkCmd.Flags()
	f.StringVar(&checkQuery.State, "state", "", "State name or code")
	f.StringVar(&checkQuery.RTOCode, "rto", "", "RTO code, or Others")
	f.StringVar(&checkQuery.VehicleCategory, "category", "", "Vehicle category (GCV, PCV, Private Car, ...)")
	f.StringVar(&checkQuery.VehicleType, "type", "", "Vehicle type")
	f.StringVar(&checkQuery.FuelType, "fuel", "", "Fuel type")
	f.StringVar(&checkQuery.PolicyType, "policy", "", "Policy type")
	f.StringVar(&checkQuery.BusinessType, "business", "", "Business type (New, Old, Renewal, Rollover)")
	f.StringVar(&checkQuery.VehicleAge, "age", "", "Vehicle age in years")
	f.StringVar(&checkQuery.CCSlab, "cc", "", "Engine CC slab")
	f.StringVar(&checkQuery.GVWSlab, "gvw-slab", "", "GVW slab as min|max, e.g. 40|MAX")
	f.StringVar(&checkQuery.GVWValue, "gvw", "", "GVW in tons")
	f.StringVar(&checkQuery.WattSlab, "watt", "", "Watt slab for electric vehicles")
	f.StringVar(&checkQuery.Seating, "seating", "", "Seating capacity")
	f.StringVar(&checkQuery.NCBSlab, "ncb", "", "NCB slab")
	f.StringVar(&checkQuery.CPACover, "cpa", "", "CPA cover")
	f.StringVar(&checkQuery.ZeroDep, "zerodep", "", "Zero depreciation")
	f.StringVar(&checkQuery.Trailer, "trailer", "", "Trailer")
	f.StringVar(&checkQuery.Make, "make", "", "Vehicle make")
	f.StringVar(&checkQuery.Model, "model", "", "Vehicle model")
}
