package journal

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "cleanup.db"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_RecordAndSweep(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	if err := j.Record(ctx, "https://cdn.example.com/a.jpg", "delete failed"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := j.Record(ctx, "https://cdn.example.com/b.jpg", "orphaned by failed save"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	entries, err := j.Pending(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	if err := j.Remove(ctx, "https://cdn.example.com/a.jpg"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	entries, err = j.Pending(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].URL != "https://cdn.example.com/b.jpg" {
		t.Errorf("Expected only b.jpg to remain, got %+v", entries)
	}
}

func TestJournal_RecordIsIdempotentPerURL(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := j.Record(ctx, "https://cdn.example.com/a.jpg", "delete failed"); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	entries, err := j.Pending(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected a single row per URL, got %d", len(entries))
	}
	if entries[0].Attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", entries[0].Attempts)
	}
}
