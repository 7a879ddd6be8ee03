package reporthandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"speakup/internal/domain/auth"
	"speakup/internal/domain/report"
	"speakup/internal/transport/http/api"
	"speakup/internal/transport/http/middleware"
)

type Handler struct {
	Service *report.Service
}

func NewHandler(service *report.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		// Submission is open: anonymity is the point.
		r.Post("/", h.handleSubmit)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.With(middleware.RequireCapability("statistics", func(p auth.Profile) bool { return p.CanViewStatistics })).
				Get("/stats", h.handleStatistics)
			r.Get("/{reportID}", h.handleGetDetail)
			r.Post("/{reportID}/status", h.handleChangeStatus)
			r.Post("/{reportID}/notes", h.handleAddNote)
			r.Post("/{reportID}/export", h.handleExport)
		})
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var form report.SubmitForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	var reporter *auth.Identity
	if identity, ok := middleware.GetIdentity(r.Context()); ok {
		reporter = &identity
	}

	result, err := h.Service.Submit(r.Context(), form, reporter, middleware.GetClientIP(r.Context()))
	if err != nil {
		api.FailDomain(w, err, requestID)
		return
	}
	api.Created(w, result, requestID)
}

func (h *Handler) handleGetDetail(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, identity, ok := h.reportCall(w, r)
	if !ok {
		return
	}

	detail, err := h.Service.GetDetail(r.Context(), id, identity, middleware.GetClientIP(r.Context()))
	if err != nil {
		api.FailDomain(w, err, requestID)
		return
	}
	api.Success(w, detail, requestID)
}

func (h *Handler) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, identity, ok := h.reportCall(w, r)
	if !ok {
		return
	}

	var payload struct {
		Status            string `json:"status"`
		EscalationReason  string `json:"escalationReason"`
		ResolutionSummary string `json:"resolutionSummary"`
		Note              string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	status, ok := report.ParseStatus(payload.Status)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "unknown status", requestID)
		return
	}

	detail, err := h.Service.ChangeStatus(r.Context(), id, report.TransitionRequest{
		NewStatus:         status,
		EscalationReason:  payload.EscalationReason,
		ResolutionSummary: payload.ResolutionSummary,
		Note:              payload.Note,
	}, identity, middleware.GetClientIP(r.Context()))
	if err != nil {
		api.FailDomain(w, err, requestID)
		return
	}
	api.Success(w, detail, requestID)
}

func (h *Handler) handleAddNote(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, identity, ok := h.reportCall(w, r)
	if !ok {
		return
	}

	var form report.NoteForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	note, err := h.Service.AddNote(r.Context(), id, form, identity, middleware.GetClientIP(r.Context()))
	if err != nil {
		api.FailDomain(w, err, requestID)
		return
	}
	api.Created(w, note, requestID)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, identity, ok := h.reportCall(w, r)
	if !ok {
		return
	}

	path, err := h.Service.ExportCaseFile(r.Context(), id, identity, middleware.GetClientIP(r.Context()))
	if err != nil {
		api.FailDomain(w, err, requestID)
		return
	}
	api.Created(w, map[string]string{"file": path}, requestID)
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, _ := middleware.GetIdentity(r.Context())
	stats, err := h.Service.Statistics(r.Context(), identity)
	if err != nil {
		api.FailDomain(w, err, requestID)
		return
	}
	api.Success(w, stats, requestID)
}

// reportCall extracts the route report id and caller identity shared by every
// per-report route.
func (h *Handler) reportCall(w http.ResponseWriter, r *http.Request) (uuid.UUID, auth.Identity, bool) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return uuid.Nil, auth.Identity{}, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "reportID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "report not found", requestID)
		return uuid.Nil, auth.Identity{}, false
	}
	return id, identity, true
}
