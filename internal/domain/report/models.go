package report

import (
	"time"

	"github.com/google/uuid"

	"speakup/internal/domain/auth"
)

type Category string

const (
	CategoryHarassment     Category = "harassment"
	CategorySafety         Category = "safety"
	CategoryFinancial      Category = "financial"
	CategoryCompliance     Category = "compliance"
	CategoryDiscrimination Category = "discrimination"
	CategoryOther          Category = "other"
)

func ParseCategory(value string) (Category, bool) {
	switch Category(value) {
	case CategoryHarassment, CategorySafety, CategoryFinancial, CategoryCompliance, CategoryDiscrimination, CategoryOther:
		return Category(value), true
	}
	return "", false
}

// Severity is ordered: low < medium < high < critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

func (s Severity) Rank() int {
	return severityRank[s]
}

func (s Severity) Exceeds(ceiling auth.Clearance) bool {
	return s.Rank() > int(ceiling)
}

type Status string

const (
	StatusReceived      Status = "received"
	StatusTriaging      Status = "triaging"
	StatusInvestigating Status = "investigating"
	StatusEscalated     Status = "escalated"
	StatusResolved      Status = "resolved"
	StatusClosed        Status = "closed"
)

func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusReceived, StatusTriaging, StatusInvestigating, StatusEscalated, StatusResolved, StatusClosed:
		return Status(value), true
	}
	return "", false
}

type ContactMethod string

const (
	ContactNone  ContactMethod = "none"
	ContactEmail ContactMethod = "email"
	ContactPhone ContactMethod = "phone"
)

func ParseContactMethod(value string) (ContactMethod, bool) {
	if value == "" {
		return ContactNone, true
	}
	switch ContactMethod(value) {
	case ContactNone, ContactEmail, ContactPhone:
		return ContactMethod(value), true
	}
	return "", false
}

// Report is the central entity. ContactInfoEnc holds the vault envelope;
// plaintext contact data never reaches the store. ReporterID stays empty for
// anonymous reports regardless of who reads the record.
type Report struct {
	ID                   uuid.UUID
	AnonymousID          string
	Category             Category
	Severity             Severity
	Priority             int
	Title                string
	Content              string
	EvidenceDescription  string
	ExpectedOutcome      string
	IsAnonymous          bool
	ReporterID           string
	ContactMethod        ContactMethod
	ContactInfoEnc       string
	Status               Status
	EscalationReason     string
	ResolutionSummary    string
	FollowUpRequired     bool
	CaseReference        string
	AssignedInvestigator string
	SubmittedAt          time.Time
	UpdatedAt            time.Time
}

// InvestigationNote is an append-only child record. Notes are never edited
// or deleted.
type InvestigationNote struct {
	ID             uuid.UUID `json:"id"`
	ReportID       uuid.UUID `json:"reportId"`
	AuthorRole     string    `json:"authorRole"`
	AuthorName     string    `json:"authorName"`
	Content        string    `json:"content"`
	IsConfidential bool      `json:"isConfidential"`
	ActionItems    []string  `json:"actionItems,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}
