package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Minute)

	for i, id := range []string{"b1", "b2", "b3"} {
		err := s.Record(ctx, Entry{
			BatchID:    id,
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
			Files:      []string{id + ".json"},
			Records:    i,
			DurationMs: int64(10 * i),
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := s.Record(ctx, Entry{BatchID: "bad", Error: "bad.json: invalid JSON"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := s.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].BatchID != "bad" || entries[0].Error == "" {
		t.Errorf("expected newest failed entry first, got %+v", entries[0])
	}
	if entries[0].Files == nil || len(entries[0].Files) != 0 {
		t.Errorf("expected empty files list, got %v", entries[0].Files)
	}
	if entries[1].BatchID != "b3" || entries[1].Records != 2 || entries[1].DurationMs != 20 {
		t.Errorf("unexpected entry %+v", entries[1])
	}
	if len(entries[1].Files) != 1 || entries[1].Files[0] != "b3.json" {
		t.Errorf("expected files [b3.json], got %v", entries[1].Files)
	}
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	s.Record(ctx, Entry{BatchID: "old", CreatedAt: time.Now().Add(-2 * time.Hour)})
	s.Record(ctx, Entry{BatchID: "new"})

	n, err := s.Prune(ctx, time.Hour)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 pruned, got %d", n)
	}
	entries, _ := s.Recent(ctx, 0)
	if len(entries) != 1 || entries[0].BatchID != "new" {
		t.Errorf("expected only new entry, got %+v", entries)
	}
}

func TestReopenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Record(context.Background(), Entry{BatchID: "kept", Records: 4}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	entries, err := s.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Records != 4 {
		t.Errorf("expected persisted entry, got %+v", entries)
	}
}

func TestNilStore(t *testing.T) {
	var s *Store
	if err := s.Record(context.Background(), Entry{}); err != nil {
		t.Errorf("expected nil store to ignore writes, got %v", err)
	}
	entries, err := s.Recent(context.Background(), 5)
	if err != nil || entries == nil || len(entries) != 0 {
		t.Errorf("expected empty result, got %v %v", entries, err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("expected nil close, got %v", err)
	}
}
