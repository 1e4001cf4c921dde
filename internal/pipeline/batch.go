package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dgallion1/reportcsv/internal/extract"
	"github.com/dgallion1/reportcsv/internal/jsonval"
	"github.com/dgallion1/reportcsv/internal/parser"
	"golang.org/x/sync/errgroup"
)

// ErrFileTooLarge is returned for a source over the configured size limit.
var ErrFileTooLarge = errors.New("file exceeds max size")

// sections are the top-level keys scanned before the whole document.
var sections = [...]string{"reports", "summary"}

// FileError attributes a batch failure to one source.
type FileError struct {
	Name string
	Err  error
}

func (e *FileError) Error() string { return e.Name + ": " + e.Err.Error() }

func (e *FileError) Unwrap() error { return e.Err }

// Options configures a Processor.
type Options struct {
	// MaxConcurrentReads bounds how many sources are read at once (default 8).
	MaxConcurrentReads int
	// MaxFileBytes is the per-source size limit (default 50 MB).
	MaxFileBytes int64
	// Logger for per-batch messages.
	Logger *slog.Logger
	// Stats, when set, records every batch outcome.
	Stats *Stats
	// Dedupe drops repeat discoveries of the same object, which otherwise
	// appear once per pass that reaches them.
	Dedupe bool
}

func (o *Options) defaults() {
	if o.MaxConcurrentReads <= 0 {
		o.MaxConcurrentReads = 8
	}
	if o.MaxFileBytes <= 0 {
		o.MaxFileBytes = 50 << 20
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Processor turns a batch of JSON sources into flattened records.
type Processor struct {
	opts Options
}

// NewProcessor creates a Processor with the given options.
func NewProcessor(opts Options) *Processor {
	opts.defaults()
	return &Processor{opts: opts}
}

// ProcessBatch runs a batch with default options.
func ProcessBatch(ctx context.Context, sources []Source) ([]extract.Record, error) {
	return NewProcessor(Options{}).Process(ctx, sources)
}

// Process reads and parses every source concurrently, then locates and
// extracts records in source order. Any read or parse failure fails the
// whole batch with a *FileError naming the source.
func (p *Processor) Process(ctx context.Context, sources []Source) ([]extract.Record, error) {
	return p.Run(ctx, nil, sources)
}

// Run is Process with progress reported on job. job may be nil.
func (p *Processor) Run(ctx context.Context, job *Job, sources []Source) ([]extract.Record, error) {
	log := p.opts.Logger.With("files", len(sources))
	if job != nil {
		log = log.With("batch_id", job.ID)
		job.SetTotalFiles(len(sources))
	}
	start := time.Now()

	// Phase 1: Read and parse with bounded concurrency.
	job.SetStatus(StatusReading, "reading")
	docs, err := p.readAll(ctx, job, sources)
	if err != nil {
		log.Error("batch failed", "error", err)
		if p.opts.Stats != nil {
			p.opts.Stats.RecordFailure()
		}
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "reading")
		return nil, err
	}

	// Phase 2: Locate and extract.
	job.SetStatus(StatusExtracting, "extracting")
	var located []*jsonval.Object
	for _, doc := range docs {
		located = append(located, Discover(doc)...)
	}
	if p.opts.Dedupe {
		located = unique(located)
	}
	records := make([]extract.Record, 0, len(located))
	for _, obj := range located {
		records = append(records, extract.Extract(obj))
	}
	job.SetRecords(records)
	job.SetStatus(StatusExtracted, "preview")

	elapsed := time.Since(start)
	if p.opts.Stats != nil {
		p.opts.Stats.Record(elapsed, len(sources), len(records))
	}
	log.Info("batch complete", "records", len(records), "duration_ms", elapsed.Milliseconds())
	return records, nil
}

func (p *Processor) readAll(ctx context.Context, job *Job, sources []Source) ([]jsonval.Value, error) {
	docs := make([]jsonval.Value, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.MaxConcurrentReads)

	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := p.load(src)
			if err != nil {
				return &FileError{Name: src.Name(), Err: err}
			}
			docs[i] = doc
			job.IncrFilesRead()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (p *Processor) load(src Source) (jsonval.Value, error) {
	rc, err := src.Open()
	if err != nil {
		return jsonval.Value{}, fmt.Errorf("read: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, p.opts.MaxFileBytes+1))
	if err != nil {
		return jsonval.Value{}, fmt.Errorf("read: %w", err)
	}
	if int64(len(data)) > p.opts.MaxFileBytes {
		return jsonval.Value{}, fmt.Errorf("%w (%d bytes)", ErrFileTooLarge, p.opts.MaxFileBytes)
	}
	return parser.ParseBytes(data)
}

// Discover locates records in one document: first under "reports", then
// under "summary", then across the whole document. Records reachable by
// more than one pass are returned once per pass.
func Discover(doc jsonval.Value) []*jsonval.Object {
	var found []*jsonval.Object
	if obj := doc.Object(); obj != nil {
		for _, key := range sections {
			if v, ok := obj.Get(key); ok && v.Truthy() {
				found = append(found, extract.Locate(v)...)
			}
		}
	}
	return append(found, extract.Locate(doc)...)
}

// unique keeps the first discovery of each object.
func unique(objs []*jsonval.Object) []*jsonval.Object {
	seen := make(map[*jsonval.Object]bool, len(objs))
	out := objs[:0]
	for _, o := range objs {
		if seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	return out
}
