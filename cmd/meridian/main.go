package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meridianpos/meridian/internal/app"
	"github.com/meridianpos/meridian/internal/catalog"
	"github.com/meridianpos/meridian/internal/checkout"
	"github.com/meridianpos/meridian/internal/ledger"
	"github.com/meridianpos/meridian/internal/lifecycle"
	"github.com/meridianpos/meridian/internal/observability"
	"github.com/meridianpos/meridian/internal/platform/cache"
	"github.com/meridianpos/meridian/internal/platform/db"
	"github.com/meridianpos/meridian/internal/promotions"
	"github.com/meridianpos/meridian/internal/shared"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)
	idemStore := shared.NewIdempotencyStore(pool)

	var discountCache *promotions.DiscountCache
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// The resolver degrades to direct reads without Redis.
		logger.Warn("redis unavailable, discount cache disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		discountCache = promotions.NewDiscountCache(redisClient, cfg.DiscountCacheTTL)
	}

	catalogService := catalog.NewService(catalog.NewRepository(pool))
	promoService := promotions.NewService(promotions.NewRepository(pool), discountCache, cfg.DiscountCacheTTL)
	ledgerService := ledger.NewService(ledger.NewRepository(pool), auditLogger, metrics)
	checkoutService := checkout.NewService(
		checkout.NewRepository(pool, cfg.LockWait),
		promoService, idemStore, auditLogger, metrics, logger)
	lifecycleService := lifecycle.NewService(lifecycle.NewPGStore(pool), auditLogger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Pool:              pool,
		Metrics:           metrics,
		CatalogHandler:    catalog.NewHandler(logger, catalogService),
		CheckoutHandler:   checkout.NewHandler(logger, checkoutService),
		LedgerHandler:     ledger.NewHandler(logger, ledgerService),
		PromotionsHandler: promotions.NewHandler(logger, promoService),
		LifecycleHandler:  lifecycle.NewHandler(logger, lifecycleService),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("meridian listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
