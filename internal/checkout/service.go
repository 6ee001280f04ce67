package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/meridianpos/meridian/internal/ledger"
	"github.com/meridianpos/meridian/internal/observability"
	"github.com/meridianpos/meridian/internal/pricing"
	"github.com/meridianpos/meridian/internal/promotions"
	"github.com/meridianpos/meridian/internal/shared"
)

// DiscountResolver yields the active promotional discount for a product at
// a given instant. promotions.Service satisfies it.
type DiscountResolver interface {
	Resolve(ctx context.Context, productID int64, at time.Time) (promotions.ProductDiscount, bool, error)
}

// IdempotencyPort claims and releases idempotency keys.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service is the sale transaction orchestrator.
type Service struct {
	repo      RepositoryPort
	discounts DiscountResolver
	idem      IdempotencyPort
	audit     AuditPort
	metrics   *observability.Metrics
	logger    *slog.Logger
	validate  *validator.Validate
}

// NewService builds Service. discounts, idem, audit and metrics may be nil;
// the orchestrator then runs without that collaborator.
func NewService(repo RepositoryPort, discounts DiscountResolver, idem IdempotencyPort, audit AuditPort, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		discounts: discounts,
		idem:      idem,
		audit:     audit,
		metrics:   metrics,
		logger:    logger,
		validate:  validator.New(),
	}
}

// Commit runs the full sale algorithm: validate the cart, then inside one
// transaction lock each product row, check stock, resolve the discount at
// the sale timestamp, snapshot the line, and finally persist the header,
// lines, stock decrements and ledger stock-out entries. Any failure rolls
// the whole sale back; at most one sale is ever committed per call.
func (s *Service) Commit(ctx context.Context, req CreateSaleRequest) (Sale, error) {
	if err := s.validate.Struct(req); err != nil {
		return Sale{}, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error())
	}
	seen := make(map[int64]bool, len(req.Lines))
	for _, line := range req.Lines {
		if seen[line.ProductID] {
			return Sale{}, shared.ValidationError("duplicate cart line for product %d", line.ProductID)
		}
		seen[line.ProductID] = true
	}

	if err := s.repo.UserExists(ctx, req.UserID); err != nil {
		return Sale{}, fmt.Errorf("verify user: %w", err)
	}
	if req.CustomerID != nil {
		if err := s.repo.CustomerExists(ctx, *req.CustomerID); err != nil {
			return Sale{}, fmt.Errorf("verify customer: %w", err)
		}
	}

	if s.idem != nil && req.IdempotencyKey != "" {
		if err := s.idem.CheckAndInsert(ctx, req.IdempotencyKey, "checkout"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return Sale{}, fmt.Errorf("%w: sale already processed for this key", shared.ErrConflict)
			}
			return Sale{}, err
		}
	}

	// Lock products in ascending id order so two concurrent carts sharing
	// products cannot deadlock.
	lines := append([]CartLine(nil), req.Lines...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	soldAt := time.Now().UTC()
	if req.SoldAt != nil && !req.SoldAt.IsZero() {
		soldAt = req.SoldAt.UTC()
	}
	var sale Sale
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		items := make([]SaleItem, 0, len(lines))
		lineTotals := make([]float64, 0, len(lines))
		for _, line := range lines {
			p, err := tx.GetProductForUpdate(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if p.Stock < line.Quantity {
				return &shared.InsufficientStockError{
					ProductID: p.ID,
					Requested: line.Quantity,
					Available: p.Stock,
				}
			}
			var amount float64
			if s.discounts != nil {
				d, ok, err := s.discounts.Resolve(ctx, p.ID, soldAt)
				if err != nil {
					return fmt.Errorf("resolve discount for product %d: %w", p.ID, err)
				}
				if ok {
					amount = d.Amount
				}
			}
			lineTotal := pricing.LineTotal(line.Quantity, p.Price, amount)
			items = append(items, SaleItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    line.Quantity,
				UnitPrice:   p.Price,
				Discount:    pricing.EffectiveDiscount(p.Price, amount),
				LineTotal:   lineTotal,
			})
			lineTotals = append(lineTotals, lineTotal)
		}

		total := pricing.SaleTotal(lineTotals, req.Discount)
		if total < 0 {
			return shared.ValidationError("overall discount %.2f exceeds cart subtotal", req.Discount)
		}

		sale = Sale{
			UserID:     req.UserID,
			CustomerID: req.CustomerID,
			Discount:   pricing.Round(req.Discount),
			Total:      total,
			SoldAt:     soldAt,
		}
		saleID, err := tx.InsertSale(ctx, sale)
		if err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}
		sale.ID = saleID
		for i := range items {
			items[i].SaleID = saleID
		}
		if err := tx.InsertSaleItems(ctx, items); err != nil {
			return fmt.Errorf("insert sale items: %w", err)
		}

		for _, it := range items {
			if err := tx.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			refSaleID := saleID
			entry := ledger.Entry{
				ProductID: it.ProductID,
				StockOut:  it.Quantity,
				RefSaleID: &refSaleID,
				RefID:     uuid.NewString(),
				CreatedBy: req.UserID,
				CreatedAt: soldAt,
			}
			if err := tx.AppendLedgerEntry(ctx, entry); err != nil {
				return fmt.Errorf("append ledger entry: %w", err)
			}
		}
		sale.Items = items
		return nil
	})
	if err != nil {
		if s.idem != nil && req.IdempotencyKey != "" {
			_ = s.idem.Delete(ctx, req.IdempotencyKey)
		}
		switch {
		case isInsufficientStock(err):
			s.metrics.SaleRejected("insufficient_stock")
		case errors.Is(err, shared.ErrConflict):
			s.metrics.SaleRejected("lock_conflict")
		case !errors.Is(err, shared.ErrValidation) && !errors.Is(err, shared.ErrNotFound):
			// Persistence failure: log the cart context, surface opaquely.
			s.logger.Error("sale rolled back",
				slog.Int64("user_id", req.UserID),
				slog.Int("line_count", len(req.Lines)),
				slog.Any("error", err))
		}
		return Sale{}, err
	}

	s.metrics.SaleCommitted()
	for range sale.Items {
		s.metrics.LedgerAppended("out")
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  req.UserID,
			Action:   "checkout:sale",
			Entity:   "sale",
			EntityID: fmt.Sprintf("%d", sale.ID),
			Meta: map[string]any{
				"total":      sale.Total,
				"line_count": len(sale.Items),
			},
		})
	}
	return sale, nil
}

// Get loads a committed sale with its snapshot lines.
func (s *Service) Get(ctx context.Context, id int64, includeDeleted bool) (Sale, error) {
	return s.repo.GetSale(ctx, id, includeDeleted)
}

func isInsufficientStock(err error) bool {
	_, ok := shared.AsInsufficientStock(err)
	return ok
}
