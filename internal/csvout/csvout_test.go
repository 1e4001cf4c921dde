package csvout

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/reportcsv/internal/extract"
	"github.com/dgallion1/reportcsv/internal/jsonval"
)

const header = "Documenttitle,DocumentType,BorrowerItemType,Names,DateOrPeriod,AccountType,Assessment,IssueType,Title,Description,Severity,Recommendation"

func record(t *testing.T, src string) extract.Record {
	t.Helper()
	v, err := jsonval.Parse([]byte(src))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return extract.Extract(v.Object())
}

func TestEncode_Empty(t *testing.T) {
	_, err := Encode(nil)
	if !errors.Is(err, ErrNothingToConvert) {
		t.Errorf("expected ErrNothingToConvert, got %v", err)
	}
	_, err = Encode([]extract.Record{})
	if !errors.Is(err, ErrNothingToConvert) {
		t.Errorf("expected ErrNothingToConvert for empty slice, got %v", err)
	}
}

func TestEncode_Header(t *testing.T) {
	if Header() != header {
		t.Errorf("expected header %q, got %q", header, Header())
	}
}

func TestEncode_CommaField(t *testing.T) {
	out, err := Encode([]extract.Record{record(t, `{"Documenttitle":"A","Description":"has a comma, here"}`)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := header + "\n" + `A,,,,,,,,,"has a comma, here",,`
	if out != want {
		t.Errorf("expected\n%s\ngot\n%s", want, out)
	}
}

func TestEncode_LineCount(t *testing.T) {
	var recs []extract.Record
	for n := 1; n <= 5; n++ {
		recs = append(recs, record(t, `{"Title":"multi\nline","Description":"x"}`))
		out, err := Encode(recs)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Embedded newlines sit inside quotes, so count record boundaries.
		lines := strings.Count(out, "\n") - strings.Count(out, "multi\nline") + 1
		if lines != n+1 {
			t.Errorf("expected %d lines, got %d", n+1, lines)
		}
		if strings.HasSuffix(out, "\n") {
			t.Error("expected no trailing newline")
		}
	}
}

func TestCell(t *testing.T) {
	obj := jsonval.NewObject()
	obj.Set("score", jsonval.NumberValue("5"))

	tests := []struct {
		name string
		in   jsonval.Value
		want string
	}{
		{"undefined", jsonval.Value{}, ""},
		{"null", jsonval.NullValue(), ""},
		{"plain string", jsonval.StringValue("hello"), "hello"},
		{"empty string", jsonval.StringValue(""), ""},
		{"comma", jsonval.StringValue("a,b"), `"a,b"`},
		{"quote", jsonval.StringValue(`say "hi"`), `"say ""hi"""`},
		{"newline", jsonval.StringValue("a\nb"), "\"a\nb\""},
		{"carriage return not quoted", jsonval.StringValue("a\rb"), "a\rb"},
		{"leading space not quoted", jsonval.StringValue(" a"), " a"},
		{"json text string", jsonval.StringValue(`{"score":5}`), `"{""score"":5}"`},
		{"number", jsonval.NumberValue("12.50"), "12.5"},
		{"bool", jsonval.BoolValue(true), "true"},
		{"object", jsonval.ObjectValue(obj), `"{""score"":5}"`},
		{"array", jsonval.ArrayValue(jsonval.StringValue("a")), `"[""a""]"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Cell(tc.in); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestEncode_NestedObjectField(t *testing.T) {
	out, err := Encode([]extract.Record{record(t, `{"Assessment":{"score":5}}`)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	want := `,,,,,,"{""score"":5}",,,,,`
	if lines[1] != want {
		t.Errorf("expected %q, got %q", want, lines[1])
	}
}

func TestWrite_MatchesEncode(t *testing.T) {
	recs := []extract.Record{
		record(t, `{"Title":"T1","Severity":2}`),
		record(t, `{"Title":"T2","Names":["a","b"]}`),
	}
	want, err := Encode(recs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sb strings.Builder
	if err := Write(&sb, recs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sb.String() != want {
		t.Errorf("expected Write output to match Encode\nwant %q\ngot  %q", want, sb.String())
	}
}
