package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/covernest/ratedesk/internal/rank"
	"github.com/covernest/ratedesk/internal/store"
)

// OutputFormat specifies the output format for CLI commands
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// PrintEntries outputs ranked payout entries in the specified format
func PrintEntries(entries []rank.Entry, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(map[string][]rank.Entry{"payouts": entries})
	case FormatYAML:
		return printYAML(entries)
	case FormatTable:
		return printEntriesTable(entries)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintBatches outputs import batches in the specified format
func PrintBatches(batches []store.Batch, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(map[string][]store.Batch{"batches": batches})
	case FormatYAML:
		return printYAML(batches)
	case FormatTable:
		return printBatchesTable(batches)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintValues outputs a plain value list in the specified format
func PrintValues(field string, values []string, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(map[string]any{"field": field, "values": values})
	case FormatYAML:
		return printYAML(map[string][]string{field: values})
	case FormatTable:
		for _, v := range values {
			fmt.Println(v)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func printYAML(data interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(data)
}

func printEntriesTable(entries []rank.Entry) error {
	table := tablewriter.NewWriter(os.Stdout)

	table.Header("Rank", "Company", "Conditions", "Payout %")

	for _, e := range entries {
		conditions := e.Conditions
		if conditions == "" {
			conditions = "-"
		}
		table.Append(
			fmt.Sprintf("%d", e.Rank),
			e.Company,
			conditions,
			fmt.Sprintf("%.4g", e.Payout),
		)
	}

	return table.Render()
}

func printBatchesTable(batches []store.Batch) error {
	table := tablewriter.NewWriter(os.Stdout)

	table.Header("ID", "Source", "Status", "Rows", "Uploaded At", "Published At")

	for _, b := range batches {
		published := "-"
		if b.PublishedAt != nil {
			published = b.PublishedAt.Format("2006-01-02 15:04")
		}
		source := b.Source
		if len(source) > 40 {
			source = source[:37] + "..."
		}
		table.Append(
			b.ID,
			source,
			b.Status,
			fmt.Sprintf("%d", b.RowCount),
			b.UploadedAt.Format("2006-01-02 15:04"),
			published,
		)
	}

	return table.Render()
}
