package audit

import "encoding/json"

// Detail is the closed set of per-action payload variants. Entries stay
// type-checked in process and are serialized to a generic JSON payload only
// at the store boundary.
type Detail interface {
	kind() string
}

type SubmittedDetail struct {
	Category string `json:"category"`
	Severity string `json:"severity"`
	Priority int    `json:"priority"`
}

func (SubmittedDetail) kind() string { return "submitted" }

type StatusChangedDetail struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (StatusChangedDetail) kind() string { return "status_changed" }

type NoteAddedDetail struct {
	NoteID         string `json:"noteId"`
	Confidential   bool   `json:"confidential"`
	AdvancedStatus bool   `json:"advancedStatus,omitempty"`
}

func (NoteAddedDetail) kind() string { return "note_added" }

// DeniedDetail records a rejected attempt. Repeated rejections against one
// report are themselves a security signal for investigators.
type DeniedDetail struct {
	Reason    string `json:"reason"`
	Requested string `json:"requested,omitempty"`
}

func (DeniedDetail) kind() string { return "denied" }

// AnomalyDetail flags reads that behaved abnormally, such as a contact
// envelope failing authentication.
type AnomalyDetail struct {
	Kind string `json:"anomaly"`
}

func (AnomalyDetail) kind() string { return "anomaly" }

type ExportDetail struct {
	File string `json:"file"`
}

func (ExportDetail) kind() string { return "export" }

type detailEnvelope struct {
	Kind string `json:"kind"`
	Data Detail `json:"data,omitempty"`
}

func encodeDetail(detail Detail) json.RawMessage {
	if detail == nil {
		return nil
	}
	payload, err := json.Marshal(detailEnvelope{Kind: detail.kind(), Data: detail})
	if err != nil {
		return nil
	}
	return payload
}
