package report

import (
	"context"

	"github.com/google/uuid"
)

// StoreAPI is the abstract report store. The core issues reads and writes
// against it and never assumes a storage technology.
type StoreAPI interface {
	// CreateReport persists a new report atomically and returns
	// ErrDuplicateAnonymousID on a tracking-token uniqueness conflict.
	CreateReport(ctx context.Context, r *Report) error

	GetReportByID(ctx context.Context, id uuid.UUID) (*Report, error)
	GetReportByAnonymousID(ctx context.Context, anonymousID string) (*Report, error)

	// UpdateReportStatus applies the mutated report only if the stored status
	// still equals expected; a stale expectation yields ErrConflict.
	UpdateReportStatus(ctx context.Context, r *Report, expected Status) error

	AppendNote(ctx context.Context, note *InvestigationNote) error
	ListNotes(ctx context.Context, reportID uuid.UUID) ([]InvestigationNote, error)

	CountByStatus(ctx context.Context) (map[string]int, error)
	CountBySeverity(ctx context.Context) (map[string]int, error)
	CountByCategory(ctx context.Context) (map[string]int, error)
}
