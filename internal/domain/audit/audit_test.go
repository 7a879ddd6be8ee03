package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

type fakeStore struct {
	entries []Entry
	fail    bool
}

func (f *fakeStore) AppendAccessLog(_ context.Context, entry Entry) error {
	if f.fail {
		return errors.New("store unavailable")
	}
	entry.Seq = int64(len(f.entries) + 1)
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeStore) ListAccessLogs(_ context.Context, reportID uuid.UUID, limit, offset int) ([]Entry, error) {
	var matched []Entry
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].ReportID == reportID {
			matched = append(matched, f.entries[i])
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func TestRecordAppends(t *testing.T) {
	store := &fakeStore{}
	trail := NewTrail(store, filepath.Join(t.TempDir(), "journal.log"))
	reportID := uuid.New()

	trail.Record(context.Background(), reportID, "u1", ActionSubmitted, SubmittedDetail{Category: "safety", Severity: "critical", Priority: 10}, "10.0.0.1")

	if len(store.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(store.entries))
	}
	entry := store.entries[0]
	if entry.Action != ActionSubmitted || entry.CallerID != "u1" || entry.Origin != "10.0.0.1" {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	var envelope struct {
		Kind string          `json:"kind"`
		Data SubmittedDetail `json:"data"`
	}
	if err := json.Unmarshal(entry.Detail, &envelope); err != nil {
		t.Fatalf("detail not valid JSON: %v", err)
	}
	if envelope.Kind != "submitted" || envelope.Data.Priority != 10 {
		t.Fatalf("unexpected detail: %+v", envelope)
	}
}

func TestRecordFallsBackToJournal(t *testing.T) {
	store := &fakeStore{fail: true}
	journalPath := filepath.Join(t.TempDir(), "journal.log")
	trail := NewTrail(store, journalPath)

	var fallbacks, drops int
	trail.SetAlertHooks(func() { fallbacks++ }, func() { drops++ })

	reportID := uuid.New()
	trail.Record(context.Background(), reportID, "u1", ActionViewed, DeniedDetail{Reason: "severity ceiling"}, "")

	if fallbacks != 1 {
		t.Fatalf("expected 1 fallback alert, got %d", fallbacks)
	}
	if drops != 0 {
		t.Fatalf("expected no drops, got %d", drops)
	}

	file, err := os.Open(journalPath)
	if err != nil {
		t.Fatalf("journal not written: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		t.Fatal("journal is empty")
	}
	var entry Entry
	if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
		t.Fatalf("journal line not valid JSON: %v", err)
	}
	if entry.ReportID != reportID || entry.Action != ActionViewed {
		t.Fatalf("unexpected journaled entry: %+v", entry)
	}
}

func TestRecordDropAlert(t *testing.T) {
	store := &fakeStore{fail: true}
	// Journal path inside a file, so the MkdirAll/OpenFile path fails too.
	base := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(base, []byte("x"), 0o600); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	trail := NewTrail(store, filepath.Join(base, "journal.log"))

	var drops int
	trail.SetAlertHooks(nil, func() { drops++ })
	trail.Record(context.Background(), uuid.New(), "u1", ActionViewed, nil, "")

	if drops != 1 {
		t.Fatalf("expected drop alert, got %d", drops)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := &fakeStore{}
	trail := NewTrail(store, filepath.Join(t.TempDir(), "journal.log"))
	reportID := uuid.New()

	trail.Record(context.Background(), reportID, "u1", ActionSubmitted, nil, "")
	trail.Record(context.Background(), reportID, "u2", ActionViewed, nil, "")
	trail.Record(context.Background(), uuid.New(), "u3", ActionViewed, nil, "")

	entries, err := trail.List(context.Background(), reportID, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Action != ActionViewed || entries[1].Action != ActionSubmitted {
		t.Fatalf("expected newest first, got %+v", entries)
	}
}
