package checkout

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridianpos/meridian/internal/platform/httpx"
)

// Handler wires HTTP endpoints for checkout.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs checkout handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers checkout routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/sales", h.handleCreateSale)
	r.Get("/sales/{id}", h.handleGetSale)
}

func (h *Handler) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	req.IdempotencyKey = r.Header.Get("Idempotency-Key")

	sale, err := h.service.Commit(r.Context(), req)
	if err != nil {
		h.logger.Warn("sale rejected",
			slog.Int64("user_id", req.UserID),
			slog.Int("line_count", len(req.Lines)),
			slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, SaleResponse{Sale: sale, Receipt: Receipt(sale)})
}

func (h *Handler) handleGetSale(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be a positive integer")
		return
	}
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"

	sale, err := h.service.Get(r.Context(), id, includeDeleted)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}
