package parser

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/dgallion1/reportcsv/internal/jsonval"
)

// ErrInvalidJSON marks a document that could not be parsed.
var ErrInvalidJSON = errors.New("invalid JSON")

// SupportedExtensions lists file extensions accepted for upload.
var SupportedExtensions = map[string]bool{
	".json": true,
}

// SupportedMediaTypes lists declared media types accepted for upload.
var SupportedMediaTypes = map[string]bool{
	"application/json": true,
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// IsSupportedMediaType checks a Content-Type value, ignoring parameters
// such as charset.
func IsSupportedMediaType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return SupportedMediaTypes[mt]
}

// Accepts reports whether an upload should reach the converter: either its
// declared media type is JSON or its name ends in .json.
func Accepts(filename, contentType string) bool {
	return IsSupportedMediaType(contentType) || IsSupportedExtension(filename)
}

// ParseBytes parses data as a single JSON document.
func ParseBytes(data []byte) (jsonval.Value, error) {
	v, err := jsonval.Parse(data)
	if err != nil {
		return jsonval.Value{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return v, nil
}
