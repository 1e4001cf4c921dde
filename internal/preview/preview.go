// Package preview renders flattened records as a short display table.
package preview

import (
	"strings"

	"github.com/dgallion1/reportcsv/internal/extract"
	"github.com/dgallion1/reportcsv/internal/jsonval"
	"github.com/rivo/uniseg"
)

const (
	DefaultRows      = 3
	DefaultCellWidth = 30
	// Placeholder marks a field the source object did not set.
	Placeholder = "-"
	ellipsis    = "..."
)

// Options controls how much of a batch is shown.
type Options struct {
	Rows      int  // rows in the collapsed view (default 3)
	CellWidth int  // characters kept per cell (default 30)
	All       bool // show every row
}

// Table is a display-ready view of a batch.
type Table struct {
	Fields []string   `json:"fields"`
	Rows   [][]string `json:"rows"`
	// Total is the number of records in the batch, shown or not.
	Total int `json:"total"`
	// Truncated reports that rows were left out.
	Truncated bool `json:"truncated"`
}

// Build renders records into a Table.
func Build(records []extract.Record, opts Options) Table {
	if opts.Rows <= 0 {
		opts.Rows = DefaultRows
	}
	if opts.CellWidth <= 0 {
		opts.CellWidth = DefaultCellWidth
	}

	shown := records
	if !opts.All && len(shown) > opts.Rows {
		shown = shown[:opts.Rows]
	}
	t := Table{
		Fields:    extract.Fields(),
		Rows:      make([][]string, 0, len(shown)),
		Total:     len(records),
		Truncated: len(shown) < len(records),
	}
	for _, rec := range shown {
		row := make([]string, len(rec))
		for i, v := range rec {
			row[i] = Cell(v, opts.CellWidth)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Cell renders one value. Text longer than width characters is cut and
// marked with "...". Characters are counted as grapheme clusters.
func Cell(v jsonval.Value, width int) string {
	if v.IsUndefined() {
		return Placeholder
	}
	var s string
	if v.Kind() == jsonval.KindString {
		s = v.Str()
	} else {
		s = v.JSON()
	}
	return truncate(s, width)
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	var sb strings.Builder
	gr := uniseg.NewGraphemes(s)
	n := 0
	for gr.Next() {
		if n == width {
			return sb.String() + ellipsis
		}
		sb.WriteString(gr.Str())
		n++
	}
	return s
}
