package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dgallion1/reportcsv/internal/csvout"
	"github.com/dgallion1/reportcsv/internal/history"
	"github.com/dgallion1/reportcsv/internal/parser"
	"github.com/dgallion1/reportcsv/internal/pipeline"
	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const defaultOutput = "output.csv"

var (
	outputPath string
	watchMode  bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [files, directories or globs...]",
	Short: "Convert JSON report files into one CSV file",
	Long: `Convert reads every input, extracts report entries in input order and
writes them as CSV. Directories and glob patterns such as "reports/**/*.json"
expand to the JSON files they contain.

With --watch the conversion reruns whenever a JSON file in a watched
directory changes.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		proc := newProcessor(cfg)
		hist := openHistory(cfg.HistoryDB)
		defer hist.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		run := func() error {
			paths, err := expandInputs(args)
			if err != nil {
				return err
			}
			start := time.Now()
			res, err := convertFiles(ctx, proc, paths, outputPath, os.Stdout)
			recordHistory(ctx, hist, paths, res, time.Since(start), err)
			if err != nil {
				return err
			}
			if outputPath != "-" {
				fmt.Fprintf(os.Stderr, "Wrote %d records from %d files to %s (%s)\n",
					res.Records, res.Files, outputPath, humanize.Bytes(uint64(res.Bytes)))
			}
			return nil
		}

		if err := run(); err != nil {
			if !watchMode {
				fatal("Conversion failed", err)
			}
			slog.Error("conversion failed", "error", err)
		}
		if !watchMode {
			return
		}
		if outputPath == "-" {
			fatal("Cannot watch", fmt.Errorf("--watch needs an output file"))
		}
		if err := watchInputs(ctx, watchDirs(args), outputPath, 200*time.Millisecond, run); err != nil {
			fatal("Watch failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&outputPath, "output", "o", defaultOutput, `Output file, or "-" for stdout`)
	convertCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Reconvert when input files change")
}

func recordHistory(ctx context.Context, hist *history.Store, paths []string, res convertResult, d time.Duration, runErr error) {
	e := history.Entry{
		BatchID:    uuid.Must(uuid.NewV7()).String(),
		Files:      paths,
		Records:    res.Records,
		DurationMs: d.Milliseconds(),
	}
	if runErr != nil {
		e.Error = runErr.Error()
	}
	if err := hist.Record(context.WithoutCancel(ctx), e); err != nil {
		slog.Warn("history write failed", "error", err)
	}
}

type convertResult struct {
	Files   int
	Records int
	Bytes   int
}

// convertFiles runs one batch and writes the CSV to output. A file output is
// replaced atomically so a failed batch never leaves a partial file.
func convertFiles(ctx context.Context, proc *pipeline.Processor, paths []string, output string, stdout io.Writer) (convertResult, error) {
	res := convertResult{Files: len(paths)}
	records, err := proc.Process(ctx, fileSources(paths))
	if err != nil {
		return res, err
	}
	res.Records = len(records)

	var buf bytes.Buffer
	if err := csvout.Write(&buf, records); err != nil {
		return res, err
	}
	res.Bytes = buf.Len()

	if output == "-" {
		_, err := buf.WriteTo(stdout)
		return res, err
	}
	return res, writeFileAtomic(output, buf.Bytes())
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".reportcsv-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// watchInputs calls run after JSON files in dirs change, coalescing bursts
// of events within debounce. It returns when ctx is done.
func watchInputs(ctx context.Context, dirs []string, output string, debounce time.Duration, run func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		slog.Debug("watching", "dir", dir)
	}

	outAbs, _ := filepath.Abs(output)
	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantEvent(event, outAbs) {
				continue
			}
			slog.Debug("change detected", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.AfterFunc(debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(debounce)
			}
		case <-fire:
			if err := run(); err != nil {
				slog.Error("conversion failed", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)
		}
	}
}

func relevantEvent(event fsnotify.Event, outAbs string) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if !parser.IsSupportedExtension(event.Name) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	return err != nil || abs != outAbs
}
