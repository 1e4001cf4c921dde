// Package csvout serializes flattened records as CSV: comma separated,
// double-quote escaped, LF line endings, no trailing newline.
package csvout

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/dgallion1/reportcsv/internal/extract"
	"github.com/dgallion1/reportcsv/internal/jsonval"
)

// ErrNothingToConvert is returned when there are no records to encode.
var ErrNothingToConvert = errors.New("no data to convert to CSV")

// Header returns the header line: catalog names joined by commas.
func Header() string {
	return strings.Join(extract.Fields(), ",")
}

// Encode renders records as one CSV document.
func Encode(records []extract.Record) (string, error) {
	var sb strings.Builder
	if err := Write(&sb, records); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Write streams the CSV document for records to w.
func Write(w io.Writer, records []extract.Record) error {
	if len(records) == 0 {
		return ErrNothingToConvert
	}
	bw := bufio.NewWriter(w)
	bw.WriteString(Header())
	for _, rec := range records {
		bw.WriteByte('\n')
		bw.WriteString(Row(rec))
	}
	return bw.Flush()
}

// Row renders one record as a CSV line without a line terminator.
func Row(rec extract.Record) string {
	cells := make([]string, len(rec))
	for i, v := range rec {
		cells[i] = Cell(v)
	}
	return strings.Join(cells, ",")
}

// Cell renders one value. Strings are quoted only when they contain a
// comma, quote or newline; numbers and booleans are never quoted; arrays
// and objects are always quoted JSON text.
func Cell(v jsonval.Value) string {
	switch v.Kind() {
	case jsonval.KindUndefined, jsonval.KindNull:
		return ""
	case jsonval.KindArray, jsonval.KindObject:
		return `"` + escapeQuotes(v.JSON()) + `"`
	case jsonval.KindString:
		s := v.Str()
		escaped := escapeQuotes(s)
		if strings.ContainsAny(s, ",\"\n") {
			return `"` + escaped + `"`
		}
		return escaped
	default:
		return v.String()
	}
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}
