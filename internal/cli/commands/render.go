package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/SliceOfPie/internal/chart"
	"github.com/JonMunkholm/SliceOfPie/internal/render"
)

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	var (
		fileType string
		kind     string
		out      string
		title    string
		width    int
		height   int
	)

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a chart of a file to PNG or PDF",
		Long: `Render a chart of a CSV or XLSX file. The output type is taken from the
--out extension (.png or .pdf). The chart kind must be one the data allows;
run inspect to list them.`,
		Example: `  # Bar chart as PNG
  sliceofpie render scores.csv --out scores.png

  # Doughnut chart as a PDF page
  sliceofpie render scores.csv --kind doughnut --out scores.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := chart.ParseKind(kind)
			if err != nil {
				return err
			}
			format, err := chart.ParseExportFormat(strings.TrimPrefix(filepath.Ext(out), "."))
			if err != nil || !format.IsImage() {
				return fmt.Errorf("--out must end in .png or .pdf, got %q", out)
			}

			ds, err := loadFile(cmd.Context(), args[0], fileType)
			if err != nil {
				return err
			}
			set, err := chart.Build(ds, chart.ClassifyAll(ds), k)
			if err != nil {
				return err
			}

			if title == "" {
				base := filepath.Base(args[0])
				title = strings.TrimSuffix(base, filepath.Ext(base))
			}
			opts := render.Options{Title: title, Width: width, Height: height}

			var buf bytes.Buffer
			if format == chart.ExportPDF {
				err = render.PDF(&buf, set, opts)
			} else {
				err = render.PNG(&buf, set, opts)
			}
			if err != nil {
				return fmt.Errorf("render %s: %w", k, err)
			}

			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s chart to %s\n", k.Title(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&fileType, "type", "", "Declared file type (csv|xlsx); default from extension")
	cmd.Flags().StringVarP(&kind, "kind", "k", string(chart.Bar), "Chart kind (bar|line|radar|pie|doughnut)")
	cmd.Flags().StringVar(&out, "out", "", "Output file (.png or .pdf)")
	cmd.Flags().StringVar(&title, "title", "", "Chart title (default: file name)")
	cmd.Flags().IntVar(&width, "width", render.DefaultWidth, "Image width in pixels")
	cmd.Flags().IntVar(&height, "height", render.DefaultHeight, "Image height in pixels")
	_ = cmd.MarkFlagRequired("out")
	_ = cmd.RegisterFlagCompletionFunc("kind", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(chart.AllKinds))
		for i, k := range chart.AllKinds {
			names[i] = string(k)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}
