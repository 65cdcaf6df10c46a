package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/arkantrust/abassist/models"
	"github.com/arkantrust/abassist/store"
)

func newTestLog(t *testing.T) *store.BoltLog {
	t.Helper()
	dir := t.TempDir()
	s, err := store.NewBoltLog(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("failed to open test log: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord(name string) *models.GenerationRecord {
	return &models.GenerationRecord{
		Timestamp:     "2026-10-18T09:30:00Z",
		TemplateName:  name,
		SubmittedData: `{"user":"alice"}`,
		GeneratedXML:  "<msg>alice</msg>",
	}
}

func TestAppendAssignsIncreasingIDs(t *testing.T) {
	s := newTestLog(t)
	ctx := context.Background()

	first, err := s.Append(ctx, sampleRecord("a.xml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := s.Append(ctx, sampleRecord("b.xml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID != 1 {
		t.Fatalf("expected first id 1, got %d", first.ID)
	}
	if second.ID != first.ID+1 {
		t.Fatalf("expected ids to increase by one, got %d then %d", first.ID, second.ID)
	}
}

func TestAppendDoesNotMutateInput(t *testing.T) {
	s := newTestLog(t)
	rec := sampleRecord("a.xml")

	if _, err := s.Append(context.Background(), rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != 0 {
		t.Fatalf("expected input record untouched, got id %d", rec.ID)
	}
}

func TestAppendThenGet(t *testing.T) {
	s := newTestLog(t)

	saved, err := s.Append(context.Background(), sampleRecord("payment.xml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Get(context.Background(), saved.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got != *saved {
		t.Fatalf("expected %+v, got %+v", *saved, *got)
	}
}

func TestAppendCancelledContext(t *testing.T) {
	s := newTestLog(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Append(ctx, sampleRecord("a.xml")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	s := newTestLog(t)
	_, err := s.Get(context.Background(), 42)
	if err == nil {
		t.Fatal("expected ErrNotFound")
	}
	if err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReopenKeepsSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	s, err := store.NewBoltLog(path)
	if err != nil {
		t.Fatalf("failed to open log: %v", err)
	}
	if _, err := s.Append(context.Background(), sampleRecord("a.xml")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Close()

	s, err = store.NewBoltLog(path)
	if err != nil {
		t.Fatalf("failed to reopen log: %v", err)
	}
	defer s.Close()

	rec, err := s.Append(context.Background(), sampleRecord("b.xml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != 2 {
		t.Fatalf("expected id 2 after reopen, got %d", rec.ID)
	}
}
