package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/SliceOfPie/internal/chart"
	"github.com/JonMunkholm/SliceOfPie/internal/dataset"
)

// InspectResult is the JSON output of inspect.
type InspectResult struct {
	File        string            `json:"file"`
	Rows        int               `json:"rows"`
	Columns     chart.Columns     `json:"columns"`
	Eligibility chart.Eligibility `json:"eligibility"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	var (
		fileType string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show column roles and the chart types a file supports",
		Long: `Parse a CSV or XLSX file, classify every column as categorical, numeric or
sequential index, and list the chart types the data allows.`,
		Example: `  # Inspect a CSV file
  sliceofpie inspect scores.csv

  # Declare the type explicitly and print JSON
  sliceofpie inspect export.xlsx --type xlsx --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadFile(cmd.Context(), args[0], fileType)
			if err != nil {
				return err
			}

			cols := chart.ClassifyAll(ds)
			res := InspectResult{
				File:        args[0],
				Rows:        ds.Len(),
				Columns:     cols,
				Eligibility: chart.Resolve(ds, cols),
			}

			switch strings.ToLower(output) {
			case "json":
				return inspectJSON(cmd.OutOrStdout(), res)
			case "table", "":
				return inspectTable(cmd.OutOrStdout(), ds, res)
			default:
				return fmt.Errorf("unknown output %q (want table or json)", output)
			}
		},
	}

	cmd.Flags().StringVar(&fileType, "type", "", "Declared file type (csv|xlsx); default from extension")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table|json)")
	_ = cmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func inspectJSON(w io.Writer, res InspectResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func inspectTable(w io.Writer, ds *dataset.Dataset, res InspectResult) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Column", "Role", "Sample"})
	for i, col := range res.Columns {
		sample := ""
		if ds.Len() > 0 {
			sample, _ = ds.Value(0, col.Header)
		}
		t.AppendRow(table.Row{i + 1, col.Header, col.Role, sample})
	}
	t.Render()

	kinds := make([]string, len(res.Eligibility.Kinds))
	for i, k := range res.Eligibility.Kinds {
		kinds[i] = string(k)
	}
	if len(kinds) == 0 {
		kinds = []string{"none"}
	}

	_, _ = fmt.Fprintf(w, "Rows: %d\n", res.Rows)
	_, _ = fmt.Fprintf(w, "Chart types: %s\n", strings.Join(kinds, ", "))
	if res.Eligibility.HasNegative {
		_, _ = fmt.Fprintln(w, "Negative values present: pie and doughnut unavailable")
	}
	return nil
}
