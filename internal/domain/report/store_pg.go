package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PGStore struct {
	DB *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{DB: db}
}

func (s *PGStore) CreateReport(ctx context.Context, r *Report) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO reports (
      id, anonymous_id, category, severity, priority, title, content,
      evidence_description, expected_outcome, is_anonymous, reporter_id,
      contact_method, contact_info_enc, status, follow_up_required,
      case_reference, submitted_at, updated_at
    )
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
  `, r.ID, r.AnonymousID, r.Category, r.Severity, r.Priority, r.Title, r.Content,
		r.EvidenceDescription, r.ExpectedOutcome, r.IsAnonymous, nullable(r.ReporterID),
		r.ContactMethod, nullable(r.ContactInfoEnc), r.Status, r.FollowUpRequired,
		nullable(r.CaseReference), r.SubmittedAt, r.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateAnonymousID
		}
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (s *PGStore) GetReportByID(ctx context.Context, id uuid.UUID) (*Report, error) {
	return s.getReport(ctx, "id = $1", id)
}

func (s *PGStore) GetReportByAnonymousID(ctx context.Context, anonymousID string) (*Report, error) {
	return s.getReport(ctx, "anonymous_id = $1", anonymousID)
}

func (s *PGStore) getReport(ctx context.Context, where string, arg any) (*Report, error) {
	var r Report
	var reporterID, contactInfoEnc, escalationReason, resolutionSummary, caseReference, assignedInvestigator *string
	err := s.DB.QueryRow(ctx, `
    SELECT id, anonymous_id, category, severity, priority, title, content,
           COALESCE(evidence_description, ''), COALESCE(expected_outcome, ''),
           is_anonymous, reporter_id, contact_method, contact_info_enc, status,
           escalation_reason, resolution_summary, follow_up_required,
           case_reference, assigned_investigator, submitted_at, updated_at
    FROM reports
    WHERE `+where, arg).Scan(
		&r.ID, &r.AnonymousID, &r.Category, &r.Severity, &r.Priority, &r.Title, &r.Content,
		&r.EvidenceDescription, &r.ExpectedOutcome,
		&r.IsAnonymous, &reporterID, &r.ContactMethod, &contactInfoEnc, &r.Status,
		&escalationReason, &resolutionSummary, &r.FollowUpRequired,
		&caseReference, &assignedInvestigator, &r.SubmittedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	r.ReporterID = deref(reporterID)
	r.ContactInfoEnc = deref(contactInfoEnc)
	r.EscalationReason = deref(escalationReason)
	r.ResolutionSummary = deref(resolutionSummary)
	r.CaseReference = deref(caseReference)
	r.AssignedInvestigator = deref(assignedInvestigator)
	return &r, nil
}

// UpdateReportStatus is the optimistic-concurrency write: the row is touched
// only while its status still matches what the caller read.
func (s *PGStore) UpdateReportStatus(ctx context.Context, r *Report, expected Status) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE reports
    SET status = $1,
        escalation_reason = $2,
        resolution_summary = $3,
        follow_up_required = $4,
        assigned_investigator = $5,
        updated_at = $6
    WHERE id = $7 AND status = $8
  `, r.Status, nullable(r.EscalationReason), nullable(r.ResolutionSummary),
		r.FollowUpRequired, nullable(r.AssignedInvestigator), r.UpdatedAt, r.ID, expected)
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM reports WHERE id = $1)", r.ID).Scan(&exists); err != nil {
			return fmt.Errorf("update report status: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

func (s *PGStore) AppendNote(ctx context.Context, note *InvestigationNote) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO investigation_notes (id, report_id, author_role, author_name, content, is_confidential, action_items, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, note.ID, note.ReportID, note.AuthorRole, note.AuthorName, note.Content, note.IsConfidential, note.ActionItems, note.CreatedAt)
	if err != nil {
		return fmt.Errorf("append note: %w", err)
	}
	return nil
}

func (s *PGStore) ListNotes(ctx context.Context, reportID uuid.UUID) ([]InvestigationNote, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, report_id, author_role, author_name, content, is_confidential, action_items, created_at
    FROM investigation_notes
    WHERE report_id = $1
    ORDER BY created_at
  `, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []InvestigationNote
	for rows.Next() {
		var note InvestigationNote
		if err := rows.Scan(&note.ID, &note.ReportID, &note.AuthorRole, &note.AuthorName, &note.Content, &note.IsConfidential, &note.ActionItems, &note.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (s *PGStore) CountByStatus(ctx context.Context) (map[string]int, error) {
	return s.countByGroup(ctx, "status")
}

func (s *PGStore) CountBySeverity(ctx context.Context) (map[string]int, error) {
	return s.countByGroup(ctx, "severity")
}

func (s *PGStore) CountByCategory(ctx context.Context) (map[string]int, error) {
	return s.countByGroup(ctx, "category")
}

func (s *PGStore) countByGroup(ctx context.Context, column string) (map[string]int, error) {
	rows, err := s.DB.Query(ctx, fmt.Sprintf("SELECT %s, COUNT(1) FROM reports GROUP BY %s", column, column))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		out[key] = count
	}
	return out, rows.Err()
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
