package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"speakup/internal/domain/audit"
	"speakup/internal/domain/auth"
)

// ExportCaseFile renders a report and its notes to a PDF case file. The file
// is encrypted at rest with the vault key; only the encrypted copy remains on
// disk. Requires confidential access for the report's severity.
func (s *Service) ExportCaseFile(ctx context.Context, id uuid.UUID, caller auth.Identity, origin string) (string, error) {
	profile := auth.Resolve(caller.Level)

	r, err := s.store.GetReportByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !profile.CanAccessConfidentialNotes || r.Severity.Exceeds(profile.MaxSeverity) {
		s.denied(ctx, r.ID, caller, audit.ActionViewed, "confidential note access required", "export", origin)
		return "", ErrAccessDenied
	}

	notes, err := s.store.ListNotes(ctx, r.ID)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.StorageDir, "casefiles")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(dir, r.AnonymousID+".pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Case File")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Reference: %s", r.AnonymousID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Category: %s    Severity: %s    Priority: %d", r.Category, r.Severity, r.Priority))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", r.Status))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Submitted: %s", r.SubmittedAt.Format("2006-01-02 15:04")))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, r.Title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, r.Content, "", "L", false)
	pdf.Ln(4)
	if r.EscalationReason != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Escalation reason: %s", r.EscalationReason))
		pdf.Ln(7)
	}
	if r.ResolutionSummary != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Resolution: %s", r.ResolutionSummary))
		pdf.Ln(7)
	}
	if len(notes) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Investigation Notes")
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 11)
		for _, note := range notes {
			pdf.Cell(0, 6, fmt.Sprintf("%s  %s (%s)", note.CreatedAt.Format("2006-01-02 15:04"), note.AuthorName, note.AuthorRole))
			pdf.Ln(6)
			pdf.MultiCell(0, 6, note.Content, "", "L", false)
			pdf.Ln(3)
		}
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	encrypted, err := s.vault.EncryptBytes(data)
	if err != nil {
		return "", err
	}
	encryptedPath := filePath + ".enc"
	if err := os.WriteFile(encryptedPath, encrypted, 0o600); err != nil {
		return "", err
	}
	if err := os.Remove(filePath); err != nil {
		return "", err
	}

	s.trail.Record(ctx, r.ID, caller.CallerID, audit.ActionViewed, audit.ExportDetail{File: filepath.Base(encryptedPath)}, origin)
	return encryptedPath, nil
}
