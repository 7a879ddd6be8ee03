package report

import (
	"time"

	"speakup/internal/domain/auth"
)

// transitions is the status adjacency graph. closed is terminal.
var transitions = map[Status][]Status{
	StatusReceived:      {StatusTriaging, StatusInvestigating},
	StatusTriaging:      {StatusInvestigating, StatusReceived},
	StatusInvestigating: {StatusEscalated, StatusResolved, StatusTriaging},
	StatusEscalated:     {StatusResolved, StatusInvestigating},
	StatusResolved:      {StatusClosed, StatusInvestigating},
	StatusClosed:        {},
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type capabilityGate struct {
	name    string
	allowed func(auth.Profile) bool
}

// Minimum capability per target status: early statuses need the investigate
// tier, escalation statuses the escalate tier, and closing out a case the
// resolve tier.
var statusGates = map[Status]capabilityGate{
	StatusReceived:      {"investigate", func(p auth.Profile) bool { return p.CanInvestigate }},
	StatusTriaging:      {"investigate", func(p auth.Profile) bool { return p.CanInvestigate }},
	StatusInvestigating: {"escalate", func(p auth.Profile) bool { return p.CanEscalate }},
	StatusEscalated:     {"escalate", func(p auth.Profile) bool { return p.CanEscalate }},
	StatusResolved:      {"resolve", func(p auth.Profile) bool { return p.CanResolve }},
	StatusClosed:        {"resolve", func(p auth.Profile) bool { return p.CanResolve }},
}

// TransitionRequest carries the requested target status and its side-effect
// payload. EscalationReason is mandatory for escalated, ResolutionSummary for
// resolved.
type TransitionRequest struct {
	NewStatus         Status
	EscalationReason  string
	ResolutionSummary string
	Note              string
}

// ApplyTransition validates and applies a status change in memory. The caller
// persists the result with a conditional update on the previous status so
// concurrent transitions cannot both win.
func ApplyTransition(r *Report, req TransitionRequest, caller auth.Identity, now time.Time) error {
	if !CanTransition(r.Status, req.NewStatus) {
		return &InvalidTransitionError{From: r.Status, To: req.NewStatus}
	}

	gate := statusGates[req.NewStatus]
	if !gate.allowed(auth.Resolve(caller.Level)) {
		return &InsufficientPermissionError{Required: gate.name, Actual: caller.Level.String()}
	}

	switch req.NewStatus {
	case StatusEscalated:
		if req.EscalationReason == "" {
			return &ValidationError{Field: "escalationReason", Message: "is required when escalating"}
		}
		r.EscalationReason = req.EscalationReason
	case StatusResolved:
		if req.ResolutionSummary == "" {
			return &ValidationError{Field: "resolutionSummary", Message: "is required when resolving"}
		}
		r.ResolutionSummary = req.ResolutionSummary
		r.FollowUpRequired = false
	}

	r.Status = req.NewStatus
	r.UpdatedAt = now
	return nil
}
