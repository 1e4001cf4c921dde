package preview

import (
	"strings"
	"testing"

	"github.com/dgallion1/reportcsv/internal/extract"
	"github.com/dgallion1/reportcsv/internal/jsonval"
)

func TestCell(t *testing.T) {
	tests := []struct {
		name string
		v    jsonval.Value
		want string
	}{
		{"undefined", jsonval.Value{}, "-"},
		{"null", jsonval.NullValue(), "null"},
		{"bool", jsonval.BoolValue(false), "false"},
		{"number", jsonval.NumberValue("1.50"), "1.5"},
		{"short string", jsonval.StringValue("Bank statement"), "Bank statement"},
		{"empty string", jsonval.StringValue(""), ""},
		{"exactly thirty", jsonval.StringValue(strings.Repeat("a", 30)), strings.Repeat("a", 30)},
		{"thirty one", jsonval.StringValue(strings.Repeat("a", 31)), strings.Repeat("a", 30) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cell(tt.v, DefaultCellWidth); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCellCountsGraphemes(t *testing.T) {
	// Each flag is two code points; cutting must not split one.
	flags := strings.Repeat("🇫🇷", 5)
	if got := Cell(jsonval.StringValue(flags), 5); got != flags {
		t.Errorf("expected untouched flags, got %q", got)
	}
	if got, want := Cell(jsonval.StringValue(flags), 3), strings.Repeat("🇫🇷", 3)+"..."; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	accented := "ééé"
	if got, want := Cell(jsonval.StringValue(accented), 2), "éé..."; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func records(n int) []extract.Record {
	out := make([]extract.Record, n)
	for i := range out {
		out[i][8] = jsonval.StringValue("T")
	}
	return out
}

func TestBuildCollapsed(t *testing.T) {
	table := Build(records(5), Options{})
	if table.Total != 5 {
		t.Errorf("expected total 5, got %d", table.Total)
	}
	if len(table.Rows) != DefaultRows {
		t.Fatalf("expected %d rows, got %d", DefaultRows, len(table.Rows))
	}
	if !table.Truncated {
		t.Error("expected truncated table")
	}
	if len(table.Fields) != extract.FieldCount {
		t.Errorf("expected %d fields, got %d", extract.FieldCount, len(table.Fields))
	}
	row := table.Rows[0]
	if row[0] != Placeholder || row[8] != "T" {
		t.Errorf("expected placeholder and title, got %q and %q", row[0], row[8])
	}
}

func TestBuildAll(t *testing.T) {
	table := Build(records(5), Options{All: true})
	if len(table.Rows) != 5 || table.Truncated {
		t.Errorf("expected all 5 rows untruncated, got %d truncated=%v", len(table.Rows), table.Truncated)
	}
}

func TestBuildSmallBatch(t *testing.T) {
	table := Build(records(2), Options{Rows: 3})
	if len(table.Rows) != 2 || table.Truncated {
		t.Errorf("expected 2 rows untruncated, got %d truncated=%v", len(table.Rows), table.Truncated)
	}
	empty := Build(nil, Options{})
	if empty.Rows == nil || empty.Total != 0 {
		t.Errorf("expected empty non-nil rows, got %+v", empty)
	}
}
