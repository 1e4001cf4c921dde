package pipeline

import (
	"bytes"
	"io"
	"os"
)

// Source is one input document of a batch.
type Source interface {
	// Name identifies the source in errors and logs.
	Name() string
	// Open returns the document bytes. The caller closes the reader.
	Open() (io.ReadCloser, error)
}

// FileSource reads a document from the local filesystem.
type FileSource string

func (f FileSource) Name() string { return string(f) }

func (f FileSource) Open() (io.ReadCloser, error) { return os.Open(string(f)) }

// BytesSource is an in-memory document.
type BytesSource struct {
	Filename string
	Data     []byte
}

func (b BytesSource) Name() string { return b.Filename }

func (b BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.Data)), nil
}
