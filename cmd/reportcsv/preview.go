package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/reportcsv/internal/preview"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

var previewAll bool

var previewCmd = &cobra.Command{
	Use:   "preview [files, directories or globs...]",
	Short: "Show the first extracted rows without writing CSV",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		paths, err := expandInputs(args)
		if err != nil {
			fatal("Failed to resolve inputs", err)
		}
		records, err := newProcessor(cfg).Process(context.Background(), fileSources(paths))
		if err != nil {
			fatal("Failed to read inputs", err)
		}
		table := preview.Build(records, preview.Options{
			Rows:      cfg.PreviewRows,
			CellWidth: cfg.PreviewCellWidth,
			All:       previewAll,
		})
		renderTable(os.Stdout, table)
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().BoolVarP(&previewAll, "all", "a", false, "Show every row")
}

// renderTable prints t as aligned columns, measuring cells by display width.
func renderTable(w io.Writer, t preview.Table) {
	fmt.Fprintf(w, "Data Preview (%d items)\n", t.Total)
	if t.Total == 0 {
		fmt.Fprintln(w, "No data to preview")
		return
	}

	widths := make([]int, len(t.Fields))
	for i, f := range t.Fields {
		widths[i] = runewidth.StringWidth(f)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	line := func(cells []string) {
		padded := make([]string, len(cells))
		for i, c := range cells {
			padded[i] = runewidth.FillRight(c, widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(padded, "  "), " "))
	}
	line(t.Fields)
	for _, row := range t.Rows {
		line(row)
	}
	if t.Truncated {
		fmt.Fprintf(w, "Showing %d of %d items\n", len(t.Rows), t.Total)
	}
}
