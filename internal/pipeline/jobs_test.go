package pipeline

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/reportcsv/internal/extract"
	"github.com/dgallion1/reportcsv/internal/jsonval"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob([]string{"a.json", "b.json"})
	if job.ID == "" {
		t.Fatal("expected job ID")
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	other := NewJob(nil)
	if other.ID == job.ID {
		t.Errorf("expected distinct IDs, got %q twice", job.ID)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusReading, "reading"},
		{StatusExtracting, "extracting"},
		{StatusExtracted, "preview"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_NilIsNoop(t *testing.T) {
	var job *Job
	job.SetStatus(StatusFailed, "x")
	job.AddError("x")
	job.SetTotalFiles(3)
	job.IncrFilesRead()
	job.SetRecords(nil)
	if job.Records() != nil {
		t.Error("expected nil records from nil job")
	}
	if _, err := job.CSV(func([]extract.Record) (string, error) { return "x", nil }); err == nil {
		t.Error("expected error from nil job")
	}
	snap := job.Snapshot()
	if snap.ID != "" || snap.Files == nil || snap.Progress.Errors == nil {
		t.Errorf("expected empty snapshot with non-nil slices, got %+v", snap)
	}
	if !job.updatedAt().IsZero() {
		t.Error("expected zero update time from nil job")
	}
}

func TestJob_ProgressCounters(t *testing.T) {
	job := NewJob([]string{"a.json"})
	job.SetTotalFiles(2)
	job.IncrFilesRead()
	job.IncrFilesRead()
	job.AddError("a.json: invalid JSON")

	var rec extract.Record
	rec[0] = jsonval.StringValue("A")
	job.SetRecords([]extract.Record{rec, rec})

	snap := job.Snapshot()
	if snap.Progress.TotalFiles != 2 || snap.Progress.FilesRead != 2 {
		t.Errorf("expected 2/2 files, got %d/%d", snap.Progress.FilesRead, snap.Progress.TotalFiles)
	}
	if snap.Progress.Records != 2 {
		t.Errorf("expected 2 records, got %d", snap.Progress.Records)
	}
	if len(snap.Progress.Errors) != 1 || snap.Progress.Errors[0] != "a.json: invalid JSON" {
		t.Errorf("expected one error, got %v", snap.Progress.Errors)
	}
}

func TestJob_CSVCachesResult(t *testing.T) {
	job := NewJob(nil)
	job.SetRecords([]extract.Record{{}})
	calls := 0
	encode := func(records []extract.Record) (string, error) {
		calls++
		return strings.Repeat("x", len(records)), nil
	}

	for range 2 {
		out, err := job.CSV(encode)
		if err != nil {
			t.Fatalf("CSV: %v", err)
		}
		if out != "x" {
			t.Errorf("expected %q, got %q", "x", out)
		}
	}
	if calls != 1 {
		t.Errorf("expected encode once, got %d", calls)
	}
	snap := job.Snapshot()
	if snap.Status != StatusConverted {
		t.Errorf("expected status %q, got %q", StatusConverted, snap.Status)
	}
	if snap.Progress.Downloads != 2 {
		t.Errorf("expected 2 downloads, got %d", snap.Progress.Downloads)
	}
}

func TestJob_CSVError(t *testing.T) {
	job := NewJob(nil)
	boom := errors.New("boom")
	if _, err := job.CSV(func([]extract.Record) (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if snap := job.Snapshot(); snap.Status == StatusConverted || snap.Progress.Downloads != 0 {
		t.Errorf("expected failed encode to leave job untouched, got %+v", snap)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if snap.Files == nil {
		t.Error("expected non-nil files slice in snapshot")
	}
}

func TestJobStore_PutGetDelete(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	if got := store.Get("store-1"); got == nil || got.ID != "store-1" {
		t.Fatalf("expected job store-1, got %v", got)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
	if !store.Delete("store-1") {
		t.Error("expected delete to report existing job")
	}
	if store.Delete("store-1") {
		t.Error("expected second delete to report missing job")
	}
	if store.Get("store-1") != nil {
		t.Error("expected nil after delete")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	store.Put(&Job{ID: "old", UpdatedAt: time.Now()})
	time.Sleep(100 * time.Millisecond)
	store.Put(&Job{ID: "new", UpdatedAt: time.Now()})

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}
