package parser

import (
	"errors"
	"testing"

	"github.com/dgallion1/reportcsv/internal/jsonval"
)

func TestAccepts(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		want        bool
	}{
		{"json extension", "reports.json", "", true},
		{"upper-case extension", "REPORTS.JSON", "application/octet-stream", true},
		{"json media type", "blob", "application/json", true},
		{"media type with charset", "blob", "application/json; charset=utf-8", true},
		{"text file", "notes.txt", "text/plain", false},
		{"json-ish name", "reports.json.bak", "", false},
		{"malformed media type", "blob", ";;;", false},
		{"no name or type", "", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Accepts(tc.filename, tc.contentType); got != tc.want {
				t.Errorf("Accepts(%q, %q): expected %v, got %v", tc.filename, tc.contentType, tc.want, got)
			}
		})
	}
}

func TestParse_Valid(t *testing.T) {
	v, err := ParseBytes([]byte(`{"reports":[{"Title":"x"}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != jsonval.KindObject {
		t.Errorf("expected object, got %s", v.Kind())
	}
}

func TestParse_InvalidWrapsSentinel(t *testing.T) {
	_, err := ParseBytes([]byte(`{"reports": [`))
	if err == nil {
		t.Fatal("expected error for truncated document")
	}
	if !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("expected ErrInvalidJSON, got %v", err)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := ParseBytes(nil)
	if !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("expected ErrInvalidJSON for empty input, got %v", err)
	}
}
