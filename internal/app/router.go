package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianpos/meridian/internal/catalog"
	"github.com/meridianpos/meridian/internal/checkout"
	"github.com/meridianpos/meridian/internal/ledger"
	"github.com/meridianpos/meridian/internal/lifecycle"
	"github.com/meridianpos/meridian/internal/observability"
	"github.com/meridianpos/meridian/internal/platform/httpx"
	"github.com/meridianpos/meridian/internal/promotions"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	Pool              *pgxpool.Pool
	Metrics           *observability.Metrics
	CatalogHandler    *catalog.Handler
	CheckoutHandler   *checkout.Handler
	LedgerHandler     *ledger.Handler
	PromotionsHandler *promotions.Handler
	LifecycleHandler  *lifecycle.Handler
}

// NewRouter constructs the chi.Router with Meridian defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if params.Pool != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := params.Pool.Ping(ctx); err != nil {
				httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.CatalogHandler != nil {
		r.Route("/catalog", func(r chi.Router) {
			params.CatalogHandler.MountRoutes(r)
		})
	}
	if params.CheckoutHandler != nil {
		r.Route("/checkout", func(r chi.Router) {
			params.CheckoutHandler.MountRoutes(r)
		})
	}
	if params.LedgerHandler != nil {
		r.Route("/ledger", func(r chi.Router) {
			params.LedgerHandler.MountRoutes(r)
		})
	}
	if params.PromotionsHandler != nil {
		r.Route("/promotions", func(r chi.Router) {
			params.PromotionsHandler.MountRoutes(r)
		})
	}
	if params.LifecycleHandler != nil {
		r.Route("/lifecycle", func(r chi.Router) {
			params.LifecycleHandler.MountRoutes(r)
		})
	}

	return r
}
