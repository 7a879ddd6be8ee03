package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action names every auditable operation against a report. The set is closed;
// rejected attempts are recorded under the action that was attempted, with a
// DeniedDetail payload.
type Action string

const (
	ActionSubmitted     Action = "submitted"
	ActionViewed        Action = "viewed"
	ActionNoteAdded     Action = "note_added"
	ActionStatusChanged Action = "status_changed"
	ActionEscalated     Action = "escalated"
	ActionResolved      Action = "resolved"
)

// Entry is one append-only access-log record. There is no update or delete
// operation anywhere in this package.
type Entry struct {
	Seq       int64           `json:"seq,omitempty"`
	ReportID  uuid.UUID       `json:"reportId"`
	CallerID  string          `json:"callerId"`
	Action    Action          `json:"action"`
	Detail    json.RawMessage `json:"detail,omitempty"`
	Origin    string          `json:"origin,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type StoreAPI interface {
	AppendAccessLog(ctx context.Context, entry Entry) error
	ListAccessLogs(ctx context.Context, reportID uuid.UUID, limit, offset int) ([]Entry, error)
}

// Trail appends access records on a best-effort basis: a failed store write
// never aborts the caller's primary operation. Entries the store rejects are
// preserved in a local append-only journal so nothing is silently dropped,
// and each fallback raises an operational alert counter.
type Trail struct {
	store       StoreAPI
	journalPath string

	mu         sync.Mutex
	onFallback func()
	onDrop     func()
}

func NewTrail(store StoreAPI, journalPath string) *Trail {
	return &Trail{store: store, journalPath: journalPath}
}

// SetAlertHooks wires fallback and drop events to operational monitoring.
func (t *Trail) SetAlertHooks(onFallback, onDrop func()) {
	t.onFallback = onFallback
	t.onDrop = onDrop
}

func (t *Trail) Record(ctx context.Context, reportID uuid.UUID, callerID string, action Action, detail Detail, origin string) {
	entry := Entry{
		ReportID:  reportID,
		CallerID:  callerID,
		Action:    action,
		Detail:    encodeDetail(detail),
		Origin:    origin,
		CreatedAt: time.Now().UTC(),
	}

	err := t.store.AppendAccessLog(ctx, entry)
	if err == nil {
		return
	}
	slog.Error("audit store write failed, journaling entry", "reportId", reportID, "action", action, "err", err)

	if t.onFallback != nil {
		t.onFallback()
	}
	if err := t.journal(entry); err != nil {
		slog.Error("audit journal write failed, entry lost", "reportId", reportID, "action", action, "err", err)
		if t.onDrop != nil {
			t.onDrop()
		}
	}
}

func (t *Trail) List(ctx context.Context, reportID uuid.UUID, limit, offset int) ([]Entry, error) {
	return t.store.ListAccessLogs(ctx, reportID, limit, offset)
}

func (t *Trail) journal(entry Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if dir := filepath.Dir(t.journalPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.OpenFile(t.journalPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Write(append(payload, '\n')); err != nil {
		return err
	}
	return nil
}
