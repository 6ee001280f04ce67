package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/meridianpos/meridian/internal/observability"
	"github.com/meridianpos/meridian/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Query(ctx context.Context, filter Filter) ([]EntryWithProduct, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates ledger operations.
type Service struct {
	repo     RepositoryPort
	audit    AuditPort
	metrics  *observability.Metrics
	validate *validator.Validate
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, metrics *observability.Metrics) *Service {
	return &Service{repo: repo, audit: audit, metrics: metrics, validate: validator.New()}
}

// Restock posts an inbound movement: it atomically increments the product's
// stock and appends exactly one stock-in entry. Every unit on hand traces
// back to one of these entries or to a sale decrement.
func (s *Service) Restock(ctx context.Context, input RestockInput) (Entry, error) {
	if err := s.validate.Struct(input); err != nil {
		return Entry{}, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error())
	}

	entry := Entry{
		ProductID: input.ProductID,
		StockIn:   input.Quantity,
		RefID:     uuid.NewString(),
		Note:      input.Note,
		CreatedBy: input.ActorID,
		CreatedAt: time.Now().UTC(),
	}
	if err := entry.Validate(); err != nil {
		return Entry{}, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error())
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetProductStockForUpdate(ctx, input.ProductID); err != nil {
			return err
		}
		if err := tx.IncrementStock(ctx, input.ProductID, input.Quantity); err != nil {
			return err
		}
		id, err := tx.InsertEntry(ctx, entry)
		if err != nil {
			return err
		}
		entry.ID = id
		return nil
	})
	if err != nil {
		return Entry{}, err
	}

	s.metrics.LedgerAppended("in")
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.ActorID,
			Action:   "ledger:restock",
			Entity:   "stock_ledger",
			EntityID: fmt.Sprintf("%d", entry.ID),
			Meta: map[string]any{
				"product_id": input.ProductID,
				"qty":        input.Quantity,
				"note":       input.Note,
			},
		})
	}
	return entry, nil
}

// Query lists entries for audit and history reporting, newest first.
func (s *Service) Query(ctx context.Context, filter Filter) ([]EntryWithProduct, error) {
	if filter.ProductID == 0 && filter.CategoryID == 0 && filter.From.IsZero() && filter.To.IsZero() {
		return nil, shared.ValidationError("at least one filter is required")
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, shared.ValidationError("date range must not be inverted")
	}
	return s.repo.Query(ctx, filter)
}
