package pipeline

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/reportcsv/internal/extract"
	"github.com/google/uuid"
)

// JobStatus represents the state of a conversion.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusReading    JobStatus = "reading"
	StatusExtracting JobStatus = "extracting"
	StatusExtracted  JobStatus = "extracted"
	StatusConverted  JobStatus = "converted"
	StatusFailed     JobStatus = "failed"
)

// Job tracks one batch conversion from upload to download. All methods are
// safe on a nil *Job and do nothing.
type Job struct {
	mu sync.Mutex

	ID     string    `json:"batch_id"`
	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`
	Files  []string  `json:"files"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	records []extract.Record
	csv     string
	errors  []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalFiles int      `json:"total_files"`
	FilesRead  int      `json:"files_read"`
	Records    int      `json:"records"`
	Downloads  int      `json:"downloads"`
	Errors     []string `json:"errors"`
}

// NewJob creates a queued job for the named files.
func NewJob(files []string) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Status:    StatusQueued,
		Phase:     "queued",
		Files:     files,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Delete removes a job. It reports whether the job existed.
func (s *JobStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[id]
	delete(s.jobs, id)
	return ok
}

// Len returns the number of stored jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) updatedAt() time.Time {
	if j == nil {
		return time.Time{}
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTotalFiles records the batch size.
func (j *Job) SetTotalFiles(n int) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalFiles = n
	j.UpdatedAt = time.Now()
}

// IncrFilesRead atomically increments files read.
func (j *Job) IncrFilesRead() {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.FilesRead++
	j.UpdatedAt = time.Now()
}

// SetRecords stores the extracted records.
func (j *Job) SetRecords(records []extract.Record) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = records
	j.Progress.Records = len(records)
	j.UpdatedAt = time.Now()
}

// Records returns the extracted records.
func (j *Job) Records() []extract.Record {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.records
}

// CSV returns the encoded document, building it once with encode and
// caching the result. A successful build moves the job to converted.
func (j *Job) CSV(encode func([]extract.Record) (string, error)) (string, error) {
	if j == nil {
		return "", errors.New("no job")
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.csv == "" {
		out, err := encode(j.records)
		if err != nil {
			return "", err
		}
		j.csv = out
		j.Status = StatusConverted
		j.Phase = "download"
	}
	j.Progress.Downloads++
	j.UpdatedAt = time.Now()
	return j.csv, nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"batch_id"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Files     []string  `json:"files"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	if j == nil {
		return JobSnapshot{Files: []string{}, Progress: Progress{Errors: []string{}}}
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:     j.ID,
		Status: j.Status,
		Phase:  j.Phase,
		Files:  append([]string{}, j.Files...),
		Progress: Progress{
			TotalFiles: j.Progress.TotalFiles,
			FilesRead:  j.Progress.FilesRead,
			Records:    j.Progress.Records,
			Downloads:  j.Progress.Downloads,
			Errors:     append([]string{}, errs...),
		},
		CreatedAt: j.CreatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
