package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGStore struct {
	DB *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{DB: db}
}

func (s *PGStore) AppendAccessLog(ctx context.Context, entry Entry) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO access_logs (report_id, caller_id, action, detail, origin, created_at)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, entry.ReportID, entry.CallerID, string(entry.Action), []byte(entry.Detail), entry.Origin, entry.CreatedAt)
	return err
}

// ListAccessLogs returns entries newest first; the insertion sequence breaks
// timestamp ties.
func (s *PGStore) ListAccessLogs(ctx context.Context, reportID uuid.UUID, limit, offset int) ([]Entry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT seq, report_id, caller_id, action, detail, origin, created_at
    FROM access_logs
    WHERE report_id = $1
    ORDER BY created_at DESC, seq DESC
    LIMIT $2 OFFSET $3
  `, reportID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var entry Entry
		var action string
		if err := rows.Scan(&entry.Seq, &entry.ReportID, &entry.CallerID, &action, &entry.Detail, &entry.Origin, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.Action = Action(action)
		out = append(out, entry)
	}
	return out, rows.Err()
}
