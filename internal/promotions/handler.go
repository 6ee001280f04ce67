package promotions

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridianpos/meridian/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the promotions module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs promotions handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers promotions routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/active", h.handleActive)
	r.Post("/events", h.handleCreateEvent)
	r.Post("/discounts", h.handleLinkDiscount)
}

func (h *Handler) handleActive(w http.ResponseWriter, r *http.Request) {
	at := time.Now().UTC()
	if v := r.URL.Query().Get("at"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "at must be RFC3339")
			return
		}
		at = parsed
	}
	events, err := h.service.ActiveEvents(r.Context(), at)
	if err != nil {
		h.logger.Error("list active events failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"at": at, "events": events})
}

func (h *Handler) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	event, err := h.service.CreateEvent(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, event)
}

func (h *Handler) handleLinkDiscount(w http.ResponseWriter, r *http.Request) {
	var req LinkDiscountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	link, err := h.service.LinkDiscount(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, link)
}
