package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/promptline/internal/domain"
)

func sampleRecords() []domain.PatchRecord {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []domain.PatchRecord{
		{
			RunID: "run-1", Timestamp: base, Root: "/work/proj", Target: "linux", Status: domain.PatchSuccess,
			Steps: []domain.StepResult{{ID: "settings", Outcome: domain.OutcomeApplied, Change: domain.AppliedChange{Path: ".claude/settings.json", Summary: "rewrote 1 command path(s)"}}},
		},
		{
			RunID: "run-2", Timestamp: base.Add(time.Minute), Root: "/work/proj", Target: "windows", DryRun: true, Status: domain.PatchPartial,
			Steps: []domain.StepResult{{ID: "hooks", Outcome: domain.OutcomeFailed, Error: "permission denied"}},
		},
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "patches.db"))
	t.Cleanup(func() { _ = store.Close() })

	for _, rec := range sampleRecords() {
		if err := store.Save(rec); err != nil {
			t.Fatalf("Save error: %v", err)
		}
	}

	got, err := store.Records(0)
	if err != nil {
		t.Fatalf("Records error: %v", err)
	}
	want := []domain.PatchRecord{sampleRecords()[1], sampleRecords()[0]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}

	limited, err := store.Records(1)
	if err != nil || len(limited) != 1 || limited[0].RunID != "run-2" {
		t.Fatalf("Records(1) = %+v, %v", limited, err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if after, _ := store.Records(0); len(after) != 0 {
		t.Fatalf("records after clear: %+v", after)
	}
}

func TestFileStoreNewestFirst(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "patches.jsonl"))
	for _, rec := range sampleRecords() {
		if err := store.Save(rec); err != nil {
			t.Fatalf("Save error: %v", err)
		}
	}
	got, err := store.Records(0)
	if err != nil {
		t.Fatalf("Records error: %v", err)
	}
	if len(got) != 2 || got[0].RunID != "run-2" || got[1].RunID != "run-1" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if !got[0].DryRun || got[0].Steps[0].Error != "permission denied" {
		t.Fatalf("fields lost in round trip: %+v", got[0])
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "none.jsonl"))
	got, err := store.Records(5)
	if err != nil || got != nil {
		t.Fatalf("Records on missing file = %v, %v", got, err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear on missing file: %v", err)
	}
}
