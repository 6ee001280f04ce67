package lifecycle

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridianpos/meridian/internal/platform/httpx"
)

// Handler wires HTTP endpoints for soft-delete and restore flows.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs lifecycle handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers lifecycle routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/{kind}/{id}/delete", h.handleSoftDelete)
	r.Post("/{kind}/{id}/restore", h.handleRestore)
}

func (h *Handler) handleSoftDelete(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.service.SoftDelete)
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.service.Restore)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, op func(context.Context, Kind, int64, int64) error) {
	kind := Kind(chi.URLParam(r, "kind"))
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	actorID := actorFromHeader(r)
	if err := op(r.Context(), kind, id, actorID); err != nil {
		h.logger.Warn("lifecycle transition failed",
			slog.String("kind", string(kind)),
			slog.Int64("id", id),
			slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"kind": kind, "id": id, "status": "ok"})
}

// actorFromHeader reads the acting user id set by the auth gateway.
// Authentication itself is an external collaborator.
func actorFromHeader(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	return id
}
