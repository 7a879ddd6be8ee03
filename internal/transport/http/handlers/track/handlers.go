package trackhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"speakup/internal/domain/report"
	"speakup/internal/transport/http/api"
	"speakup/internal/transport/http/middleware"
)

// Handler serves the unauthenticated tracking endpoint. The service layer
// guarantees the response carries status metadata only.
type Handler struct {
	Service *report.Service
}

func NewHandler(service *report.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/track/{anonymousID}", h.handleTrack)
}

func (h *Handler) handleTrack(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	progress, err := h.Service.Track(r.Context(), chi.URLParam(r, "anonymousID"))
	if err != nil {
		api.FailDomain(w, err, requestID)
		return
	}
	api.Success(w, progress, requestID)
}
