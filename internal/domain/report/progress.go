package report

import "time"

// PublicProgress is everything the unauthenticated tracking endpoint may
// reveal. No free text from the report and no contact data ever appears
// here.
type PublicProgress struct {
	AnonymousID         string    `json:"anonymousId"`
	Status              Status    `json:"status"`
	StatusMessage       string    `json:"statusMessage"`
	Category            Category  `json:"category"`
	Severity            Severity  `json:"severity"`
	Progress            int       `json:"progress"`
	SubmittedAt         time.Time `json:"submittedAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
	EstimatedCompletion time.Time `json:"estimatedCompletion"`
	Overdue             bool      `json:"overdue"`
}

var statusProgress = map[Status]int{
	StatusReceived:      10,
	StatusTriaging:      25,
	StatusInvestigating: 50,
	StatusEscalated:     70,
	StatusResolved:      90,
	StatusClosed:        100,
}

var statusMessages = map[Status]string{
	StatusReceived:      "Your report has been received and is awaiting review.",
	StatusTriaging:      "Your report is being assessed to determine next steps.",
	StatusInvestigating: "An investigation into your report is underway.",
	StatusEscalated:     "Your report has been escalated for senior review.",
	StatusResolved:      "Your report has been resolved. A final review is in progress.",
	StatusClosed:        "Your report has been closed. Thank you for speaking up.",
}

// severitySLA is the per-severity resolution target measured from submission.
var severitySLA = map[Severity]time.Duration{
	SeverityCritical: 3 * 24 * time.Hour,
	SeverityHigh:     7 * 24 * time.Hour,
	SeverityMedium:   14 * 24 * time.Hour,
	SeverityLow:      30 * 24 * time.Hour,
}

var responseTimes = map[Severity]string{
	SeverityCritical: "within 1 hour",
	SeverityHigh:     "within 24 hours",
	SeverityMedium:   "within 3 business days",
	SeverityLow:      "within 5 business days",
}

func EstimatedResponseTime(severity Severity) string {
	return responseTimes[severity]
}

func buildProgress(r *Report, now time.Time) *PublicProgress {
	target := r.SubmittedAt.Add(severitySLA[r.Severity])
	active := r.Status != StatusResolved && r.Status != StatusClosed
	return &PublicProgress{
		AnonymousID:         r.AnonymousID,
		Status:              r.Status,
		StatusMessage:       statusMessages[r.Status],
		Category:            r.Category,
		Severity:            r.Severity,
		Progress:            statusProgress[r.Status],
		SubmittedAt:         r.SubmittedAt,
		UpdatedAt:           r.UpdatedAt,
		EstimatedCompletion: target,
		Overdue:             active && now.After(target),
	}
}
