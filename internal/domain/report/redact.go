package report

import (
	"time"

	"github.com/google/uuid"

	"speakup/internal/domain/audit"
	"speakup/internal/domain/auth"
)

// RedactedReport is the caller-facing shape. Confidential material lives
// behind a pointer that is omitted, not nulled, for callers without the
// confidential capability, so absence carries no signal.
type RedactedReport struct {
	ID                  uuid.UUID           `json:"id"`
	AnonymousID         string              `json:"anonymousId"`
	Category            Category            `json:"category"`
	Severity            Severity            `json:"severity"`
	Priority            int                 `json:"priority"`
	Title               string              `json:"title"`
	Content             string              `json:"content"`
	EvidenceDescription string              `json:"evidenceDescription,omitempty"`
	ExpectedOutcome     string              `json:"expectedOutcome,omitempty"`
	Status              Status              `json:"status"`
	FollowUpRequired    bool                `json:"followUpRequired"`
	IsAnonymous         bool                `json:"isAnonymous"`
	ReporterID          string              `json:"reporterId,omitempty"`
	SubmittedAt         time.Time           `json:"submittedAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
	Confidential        *ConfidentialDetail `json:"confidential,omitempty"`
}

type ConfidentialDetail struct {
	ContactMethod        ContactMethod       `json:"contactMethod"`
	ContactInfo          string              `json:"contactInfo,omitempty"`
	EscalationReason     string              `json:"escalationReason,omitempty"`
	ResolutionSummary    string              `json:"resolutionSummary,omitempty"`
	CaseReference        string              `json:"caseReference,omitempty"`
	AssignedInvestigator string              `json:"assignedInvestigator,omitempty"`
	Notes                []InvestigationNote `json:"notes,omitempty"`
	AccessHistory        []audit.Entry       `json:"accessHistory,omitempty"`
}

// Redact applies the caller's profile to a report. A severity above the
// caller's ceiling is an outright denial, not a silent redaction. Reporter
// identity is only ever attached when the report is not anonymous.
func Redact(r *Report, profile auth.Profile) (*RedactedReport, error) {
	if !profile.CanView {
		return nil, ErrAccessDenied
	}
	if r.Severity.Exceeds(profile.MaxSeverity) {
		return nil, ErrAccessDenied
	}

	out := &RedactedReport{
		ID:                  r.ID,
		AnonymousID:         r.AnonymousID,
		Category:            r.Category,
		Severity:            r.Severity,
		Priority:            r.Priority,
		Title:               r.Title,
		Content:             r.Content,
		EvidenceDescription: r.EvidenceDescription,
		ExpectedOutcome:     r.ExpectedOutcome,
		Status:              r.Status,
		FollowUpRequired:    r.FollowUpRequired,
		IsAnonymous:         r.IsAnonymous,
		SubmittedAt:         r.SubmittedAt,
		UpdatedAt:           r.UpdatedAt,
	}
	if !r.IsAnonymous {
		out.ReporterID = r.ReporterID
	}
	if profile.CanAccessConfidentialNotes {
		out.Confidential = &ConfidentialDetail{
			ContactMethod:        r.ContactMethod,
			EscalationReason:     r.EscalationReason,
			ResolutionSummary:    r.ResolutionSummary,
			CaseReference:        r.CaseReference,
			AssignedInvestigator: r.AssignedInvestigator,
		}
	}
	return out, nil
}
