package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/reportcsv/internal/config"
	"github.com/dgallion1/reportcsv/internal/extract"
	"github.com/dgallion1/reportcsv/internal/history"
)

// Orchestrator runs conversions and keeps their results for download.
type Orchestrator struct {
	jobs  *JobStore
	proc  *Processor
	stats *Stats
	hist  *history.Store
	log   *slog.Logger
	cfg   config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the conversion pipeline.
func NewOrchestrator(cfg config.Config, log *slog.Logger) *Orchestrator {
	stats := NewStats(time.Hour)
	return &Orchestrator{
		jobs:  NewJobStore(cfg.ResultTTL),
		stats: stats,
		log:   log,
		cfg:   cfg,
		proc: NewProcessor(Options{
			MaxConcurrentReads: cfg.MaxConcurrentReads,
			MaxFileBytes:       cfg.MaxUploadBytes,
			Logger:             log,
			Stats:              stats,
			Dedupe:             cfg.DedupeRecords,
		}),
	}
}

// SetHistory makes every Convert leave an entry in h. A nil store turns the
// history off.
func (o *Orchestrator) SetHistory(h *history.Store) {
	o.hist = h
}

// History returns the conversion log, nil when disabled.
func (o *Orchestrator) History() *history.Store {
	return o.hist
}

// Start launches the result-store cleanup loop.
func (o *Orchestrator) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	interval := o.cfg.ResultTTL / 4
	if interval > 5*time.Minute {
		interval = 5 * time.Minute
	}
	if interval < time.Second {
		interval = time.Second
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
				if n, err := o.hist.Prune(loopCtx, o.cfg.HistoryRetention); err != nil {
					o.log.Warn("history prune failed", "error", err)
				} else if n > 0 {
					o.log.Debug("history pruned", "entries", n)
				}
			}
		}
	}()
}

// Stop halts the cleanup loop.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Convert processes a batch synchronously. On success the job is stored
// for preview and download; on failure nothing is kept.
func (o *Orchestrator) Convert(ctx context.Context, sources []Source) (*Job, error) {
	job, _, err := o.run(ctx, sources)
	if err != nil {
		return job, err
	}
	o.jobs.Put(job)
	return job, nil
}

// Records runs a batch without storing it. The run is still logged to
// the history.
func (o *Orchestrator) Records(ctx context.Context, sources []Source) ([]extract.Record, error) {
	_, records, err := o.run(ctx, sources)
	return records, err
}

func (o *Orchestrator) run(ctx context.Context, sources []Source) (*Job, []extract.Record, error) {
	if len(sources) == 0 {
		return nil, nil, fmt.Errorf("no files in batch")
	}
	if n := o.cfg.MaxFiles; n > 0 && len(sources) > n {
		return nil, nil, fmt.Errorf("too many files in batch (%d, max %d)", len(sources), n)
	}
	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = src.Name()
	}

	job := NewJob(names)
	start := time.Now()
	records, err := o.proc.Run(ctx, job, sources)
	o.record(ctx, job, len(records), time.Since(start), err)
	return job, records, err
}

func (o *Orchestrator) record(ctx context.Context, job *Job, records int, d time.Duration, runErr error) {
	if o.hist == nil {
		return
	}
	e := history.Entry{
		BatchID:    job.ID,
		CreatedAt:  job.CreatedAt,
		Files:      job.Files,
		Records:    records,
		DurationMs: d.Milliseconds(),
	}
	if runErr != nil {
		e.Error = runErr.Error()
	}
	if err := o.hist.Record(context.WithoutCancel(ctx), e); err != nil {
		o.log.Warn("history write failed", "batch_id", job.ID, "error", err)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// DeleteJob discards a stored job.
func (o *Orchestrator) DeleteJob(id string) bool {
	return o.jobs.Delete(id)
}

// Stats returns the conversion latency tracker.
func (o *Orchestrator) Stats() *Stats {
	return o.stats
}

// StoredJobs returns how many conversions are held for download.
func (o *Orchestrator) StoredJobs() int {
	return o.jobs.Len()
}
