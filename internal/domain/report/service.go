package report

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"speakup/internal/domain/audit"
	"speakup/internal/domain/auth"
	"speakup/internal/platform/crypto"
)

const (
	anonymousCaller    = "anonymous"
	contactPlaceholder = "[contact information unavailable]"
	generateAttempts   = 3
)

// Hooks surface security-relevant events to operational monitoring. All
// fields are optional.
type Hooks struct {
	AccessDenied   func()
	DecryptFailure func()
	Submission     func(Severity)
}

type Service struct {
	store StoreAPI
	vault *crypto.Vault
	trail *audit.Trail
	ids   *IDGenerator

	// AdvanceOnNote controls the documented side effect of AddNote moving a
	// received report into investigating.
	AdvanceOnNote bool
	StorageDir    string

	hooks Hooks
	now   func() time.Time
}

func NewService(store StoreAPI, vault *crypto.Vault, trail *audit.Trail, ids *IDGenerator) *Service {
	return &Service{
		store:         store,
		vault:         vault,
		trail:         trail,
		ids:           ids,
		AdvanceOnNote: true,
		StorageDir:    "storage",
		now:           time.Now,
	}
}

func (s *Service) SetHooks(hooks Hooks) {
	s.hooks = hooks
}

type SubmitForm struct {
	Category            string `json:"category"`
	Title               string `json:"title"`
	Content             string `json:"content"`
	EvidenceDescription string `json:"evidenceDescription"`
	ExpectedOutcome     string `json:"expectedOutcome"`
	IsAnonymous         bool   `json:"isAnonymous"`
	ContactMethod       string `json:"contactMethod"`
	ContactInfo         string `json:"contactInfo"`
}

type SubmitResult struct {
	ID                    uuid.UUID `json:"id"`
	AnonymousID           string    `json:"anonymousId"`
	Severity              Severity  `json:"severity"`
	Priority              int       `json:"priority"`
	EstimatedResponseTime string    `json:"estimatedResponseTime"`
}

// Submit validates, classifies, assigns the tracking token, and persists the
// report atomically: there is no partially visible submission. The reporter
// identity is attached only for non-anonymous submissions.
func (s *Service) Submit(ctx context.Context, form SubmitForm, reporter *auth.Identity, origin string) (SubmitResult, error) {
	category, ok := ParseCategory(strings.TrimSpace(form.Category))
	if !ok {
		return SubmitResult{}, &ValidationError{Field: "category", Message: "must be one of harassment, safety, financial, compliance, discrimination, other"}
	}
	if strings.TrimSpace(form.Title) == "" {
		return SubmitResult{}, &ValidationError{Field: "title", Message: "is required"}
	}
	if strings.TrimSpace(form.Content) == "" {
		return SubmitResult{}, &ValidationError{Field: "content", Message: "is required"}
	}
	contactMethod, ok := ParseContactMethod(form.ContactMethod)
	if !ok {
		return SubmitResult{}, &ValidationError{Field: "contactMethod", Message: "must be none, email or phone"}
	}
	if contactMethod == ContactNone && form.ContactInfo != "" {
		return SubmitResult{}, &ValidationError{Field: "contactMethod", Message: "is required when contact info is provided"}
	}

	severity, priority := Classify(category, form.Content)
	now := s.now().UTC()

	r := &Report{
		ID:                  uuid.New(),
		Category:            category,
		Severity:            severity,
		Priority:            priority,
		Title:               form.Title,
		Content:             form.Content,
		EvidenceDescription: form.EvidenceDescription,
		ExpectedOutcome:     form.ExpectedOutcome,
		IsAnonymous:         form.IsAnonymous,
		ContactMethod:       contactMethod,
		Status:              StatusReceived,
		SubmittedAt:         now,
		UpdatedAt:           now,
	}
	if !form.IsAnonymous && reporter != nil {
		r.ReporterID = reporter.CallerID
	}
	if form.ContactInfo != "" {
		envelope, err := s.vault.Encrypt(form.ContactInfo)
		if err != nil {
			return SubmitResult{}, err
		}
		r.ContactInfoEnc = envelope
	}

	if err := s.createWithFreshID(ctx, r); err != nil {
		return SubmitResult{}, err
	}

	if s.hooks.Submission != nil {
		s.hooks.Submission(severity)
	}
	s.trail.Record(ctx, r.ID, s.callerID(reporter), audit.ActionSubmitted, audit.SubmittedDetail{
		Category: string(category),
		Severity: string(severity),
		Priority: priority,
	}, origin)

	return SubmitResult{
		ID:                    r.ID,
		AnonymousID:           r.AnonymousID,
		Severity:              severity,
		Priority:              priority,
		EstimatedResponseTime: EstimatedResponseTime(severity),
	}, nil
}

// createWithFreshID retries the bounded regenerate-and-insert loop on a
// tracking-token uniqueness conflict.
func (s *Service) createWithFreshID(ctx context.Context, r *Report) error {
	var err error
	for attempt := 0; attempt < generateAttempts; attempt++ {
		r.AnonymousID, err = s.ids.Generate()
		if err != nil {
			return err
		}
		err = s.store.CreateReport(ctx, r)
		if !errors.Is(err, ErrDuplicateAnonymousID) {
			return err
		}
	}
	return errors.New("could not allocate a unique anonymous id")
}

// GetDetail loads a report and applies the caller's profile. Denials are
// audited as viewed attempts; a contact envelope that fails authentication
// is replaced with a placeholder and audited as an anomaly.
func (s *Service) GetDetail(ctx context.Context, id uuid.UUID, caller auth.Identity, origin string) (*RedactedReport, error) {
	profile := auth.Resolve(caller.Level)

	r, err := s.store.GetReportByID(ctx, id)
	if err != nil {
		return nil, err
	}

	redacted, err := Redact(r, profile)
	if err != nil {
		s.denied(ctx, r.ID, caller, audit.ActionViewed, "severity ceiling or missing view capability", "", origin)
		return nil, err
	}

	if redacted.Confidential != nil {
		if r.ContactInfoEnc != "" {
			plain, err := s.vault.Decrypt(r.ContactInfoEnc)
			switch {
			case err == nil:
				redacted.Confidential.ContactInfo = plain
			case errors.Is(err, crypto.ErrDecryption):
				redacted.Confidential.ContactInfo = contactPlaceholder
				if s.hooks.DecryptFailure != nil {
					s.hooks.DecryptFailure()
				}
				s.trail.Record(ctx, r.ID, caller.CallerID, audit.ActionViewed, audit.AnomalyDetail{Kind: "contact_decrypt_failed"}, origin)
			default:
				return nil, err
			}
		}
		notes, err := s.store.ListNotes(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		redacted.Confidential.Notes = notes
		history, err := s.trail.List(ctx, r.ID, 50, 0)
		if err == nil {
			redacted.Confidential.AccessHistory = history
		}
	}

	s.trail.Record(ctx, r.ID, caller.CallerID, audit.ActionViewed, nil, origin)
	return redacted, nil
}

// ChangeStatus runs the lifecycle engine and persists the transition with an
// optimistic check on the previous status. Every attempt, rejected or not,
// lands in the access trail.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, req TransitionRequest, caller auth.Identity, origin string) (*RedactedReport, error) {
	profile := auth.Resolve(caller.Level)

	r, err := s.store.GetReportByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !profile.CanView || r.Severity.Exceeds(profile.MaxSeverity) {
		s.denied(ctx, r.ID, caller, actionForStatus(req.NewStatus), "severity ceiling or missing view capability", string(req.NewStatus), origin)
		return nil, ErrAccessDenied
	}

	previous := r.Status
	if err := ApplyTransition(r, req, caller, s.now().UTC()); err != nil {
		var insufficient *InsufficientPermissionError
		if errors.As(err, &insufficient) && s.hooks.AccessDenied != nil {
			s.hooks.AccessDenied()
		}
		s.trail.Record(ctx, r.ID, caller.CallerID, actionForStatus(req.NewStatus), audit.DeniedDetail{
			Reason:    err.Error(),
			Requested: string(req.NewStatus),
		}, origin)
		return nil, err
	}

	if err := s.store.UpdateReportStatus(ctx, r, previous); err != nil {
		if errors.Is(err, ErrConflict) {
			s.trail.Record(ctx, r.ID, caller.CallerID, actionForStatus(req.NewStatus), audit.DeniedDetail{
				Reason:    "concurrent status change lost the race",
				Requested: string(req.NewStatus),
			}, origin)
		}
		return nil, err
	}

	if req.Note != "" {
		note := &InvestigationNote{
			ID:             uuid.New(),
			ReportID:       r.ID,
			AuthorRole:     roleLabel(profile),
			AuthorName:     caller.DisplayName,
			Content:        req.Note,
			IsConfidential: true,
			CreatedAt:      s.now().UTC(),
		}
		if err := s.store.AppendNote(ctx, note); err != nil {
			return nil, err
		}
	}

	s.trail.Record(ctx, r.ID, caller.CallerID, actionForStatus(r.Status), audit.StatusChangedDetail{
		From: string(previous),
		To:   string(r.Status),
	}, origin)

	return Redact(r, profile)
}

type NoteForm struct {
	Content        string   `json:"content"`
	IsConfidential bool     `json:"isConfidential"`
	ActionItems    []string `json:"actionItems"`
}

// AddNote appends an investigation note. As a documented side effect, the
// first note against a received report advances it to investigating; the
// step is explicit here and can be disabled by policy.
func (s *Service) AddNote(ctx context.Context, id uuid.UUID, form NoteForm, caller auth.Identity, origin string) (*InvestigationNote, error) {
	profile := auth.Resolve(caller.Level)

	r, err := s.store.GetReportByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !profile.CanAccessConfidentialNotes || r.Severity.Exceeds(profile.MaxSeverity) {
		s.denied(ctx, r.ID, caller, audit.ActionNoteAdded, "confidential note access required", "", origin)
		return nil, ErrAccessDenied
	}
	if strings.TrimSpace(form.Content) == "" {
		return nil, &ValidationError{Field: "content", Message: "is required"}
	}

	note := &InvestigationNote{
		ID:             uuid.New(),
		ReportID:       r.ID,
		AuthorRole:     roleLabel(profile),
		AuthorName:     caller.DisplayName,
		Content:        form.Content,
		IsConfidential: form.IsConfidential,
		ActionItems:    form.ActionItems,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.store.AppendNote(ctx, note); err != nil {
		return nil, err
	}

	advanced := false
	if s.AdvanceOnNote && r.Status == StatusReceived {
		r.Status = StatusInvestigating
		r.UpdatedAt = s.now().UTC()
		// A concurrent transition winning the race is fine; the note stands
		// either way.
		if err := s.store.UpdateReportStatus(ctx, r, StatusReceived); err == nil {
			advanced = true
		} else if !errors.Is(err, ErrConflict) {
			return nil, err
		}
	}

	s.trail.Record(ctx, r.ID, caller.CallerID, audit.ActionNoteAdded, audit.NoteAddedDetail{
		NoteID:         note.ID.String(),
		Confidential:   note.IsConfidential,
		AdvancedStatus: advanced,
	}, origin)

	return note, nil
}

// Track is the one unauthenticated operation. The format check runs before
// any store access, and the response never carries free text or contact
// data.
func (s *Service) Track(ctx context.Context, anonymousID string) (*PublicProgress, error) {
	if !ValidateAnonymousID(anonymousID) {
		return nil, &ValidationError{Field: "anonymousId", Message: "is malformed"}
	}
	r, err := s.store.GetReportByAnonymousID(ctx, anonymousID)
	if err != nil {
		return nil, err
	}
	return buildProgress(r, s.now().UTC()), nil
}

type Statistics struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"byStatus"`
	BySeverity map[string]int `json:"bySeverity"`
	ByCategory map[string]int `json:"byCategory"`
}

func (s *Service) Statistics(ctx context.Context, caller auth.Identity) (*Statistics, error) {
	profile := auth.Resolve(caller.Level)
	if !profile.CanViewStatistics {
		if s.hooks.AccessDenied != nil {
			s.hooks.AccessDenied()
		}
		return nil, ErrAccessDenied
	}

	byStatus, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	bySeverity, err := s.store.CountBySeverity(ctx)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.store.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, count := range byStatus {
		total += count
	}
	return &Statistics{Total: total, ByStatus: byStatus, BySeverity: bySeverity, ByCategory: byCategory}, nil
}

// AccessHistory lists the audit trail for a report, newest first.
func (s *Service) AccessHistory(ctx context.Context, id uuid.UUID, caller auth.Identity, limit, offset int) ([]audit.Entry, error) {
	profile := auth.Resolve(caller.Level)
	if !profile.CanAccessConfidentialNotes {
		if s.hooks.AccessDenied != nil {
			s.hooks.AccessDenied()
		}
		return nil, ErrAccessDenied
	}
	if _, err := s.store.GetReportByID(ctx, id); err != nil {
		return nil, err
	}
	return s.trail.List(ctx, id, limit, offset)
}

func (s *Service) denied(ctx context.Context, id uuid.UUID, caller auth.Identity, action audit.Action, reason, requested, origin string) {
	if s.hooks.AccessDenied != nil {
		s.hooks.AccessDenied()
	}
	s.trail.Record(ctx, id, caller.CallerID, action, audit.DeniedDetail{Reason: reason, Requested: requested}, origin)
}

func (s *Service) callerID(reporter *auth.Identity) string {
	if reporter != nil && reporter.CallerID != "" {
		return reporter.CallerID
	}
	return anonymousCaller
}

func actionForStatus(status Status) audit.Action {
	switch status {
	case StatusEscalated:
		return audit.ActionEscalated
	case StatusResolved:
		return audit.ActionResolved
	default:
		return audit.ActionStatusChanged
	}
}

func roleLabel(profile auth.Profile) string {
	switch {
	case profile.CanResolve:
		return "case-manager"
	case profile.CanEscalate:
		return "senior-investigator"
	case profile.CanInvestigate:
		return "investigator"
	default:
		return "viewer"
	}
}
