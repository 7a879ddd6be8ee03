package audithandler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"speakup/internal/domain/auth"
	"speakup/internal/domain/report"
	"speakup/internal/transport/http/api"
	"speakup/internal/transport/http/middleware"
)

// Handler exposes the per-report access trail to confidential-capable
// callers. The trail is append-only; there is deliberately no write route.
type Handler struct {
	Service *report.Service
}

func NewHandler(service *report.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireCapability("confidential", func(p auth.Profile) bool { return p.CanAccessConfidentialNotes })).
			Get("/reports/{reportID}", h.handleListAccess)
	})
}

func (h *Handler) handleListAccess(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "reportID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "report not found", requestID)
		return
	}

	limit := queryInt(r, "limit", 100, 500)
	offset := queryInt(r, "offset", 0, 1<<20)

	entries, err := h.Service.AccessHistory(r.Context(), id, identity, limit, offset)
	if err != nil {
		api.FailDomain(w, err, requestID)
		return
	}
	api.Success(w, entries, requestID)
}

func queryInt(r *http.Request, name string, fallback, ceiling int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	if value > ceiling {
		return ceiling
	}
	return value
}
