package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/covernest/ratedesk/internal/cli"
	"github.com/covernest/ratedesk/internal/client"
	"github.com/covernest/ratedesk/internal/rates"
)

var (
	importSource  string
	importDryRun  bool
	importPublish bool
)

// importFile is the on-disk import format: a list of raw rate rows keyed by
// the cleaned spreadsheet column names.
type importFile struct {
	Source string         `yaml:"source" json:"source"`
	Rows   []rates.RawRow `yaml:"rows" json:"rows"`
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import rate rows as a new batch",
	Long: `Import rate rows from a YAML or JSON file as a new staged batch.
The batch only affects live queries after it is published.

Examples:
  ratedesk import rates.yaml --source monthly-sheet
  ratedesk import rates.yaml --dry-run
  ratedesk import rates.json --source monthly-sheet --publish`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		var in importFile
		if strings.HasSuffix(filename, ".json") {
			err = json.Unmarshal(data, &in)
		} else {
			err = yaml.Unmarshal(data, &in)
		}
		if err != nil {
			return fmt.Errorf("failed to parse file: %w", err)
		}
		if len(in.Rows) == 0 {
			return fmt.Errorf("no rows found in file")
		}

		source := importSource
		if source == "" {
			source = in.Source
		}
		if source == "" {
			source = filename
		}

		if verbose {
			fmt.Printf("Found %d row(s) to import\n", len(in.Rows))
		}

		// Dry run mode - validate rows locally and show what would be staged
		if importDryRun {
			parseable := 0
			for _, row := range in.Rows {
				if _, err := rates.ParseRecord("dry-run", row); err == nil {
					parseable++
				}
			}
			fmt.Printf("Dry run: %d of %d row(s) parse as rate records\n", parseable, len(in.Rows))
			return nil
		}

		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)
		ctx := context.Background()

		batch, err := c.ImportBatch(ctx, source, in.Rows)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		if !quiet {
			fmt.Printf("Staged batch %s with %d row(s)\n", batch.ID, batch.RowCount)
		}

		if importPublish {
			res, err := c.PublishBatch(ctx, batch.ID)
			if err != nil {
				return fmt.Errorf("publish failed: %w", err)
			}
			if !quiet {
				fmt.Printf("Published batch %s: %d record(s), %d skipped, etag %s\n",
					batch.ID, res.Records, res.Skipped, res.ETag)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importSource, "source", "", "Batch source label")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate without importing")
	importCmd.Flags().BoolVar(&importPublish, "publish", false, "Publish the batch after staging")
}
