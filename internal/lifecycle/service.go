package lifecycle

import (
	"context"
	"fmt"

	"github.com/meridianpos/meridian/internal/shared"
)

// Store abstracts the tombstone writes so the service can be tested without
// a database.
type Store interface {
	MarkDeleted(ctx context.Context, table string, id int64) (bool, error)
	ClearDeleted(ctx context.Context, table string, id int64) (bool, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service applies soft-delete and restore transitions for registered kinds.
type Service struct {
	store Store
	audit AuditPort
}

// NewService builds Service.
func NewService(store Store, audit AuditPort) *Service {
	return &Service{store: store, audit: audit}
}

// SoftDelete sets the tombstone flag and deletion timestamp in one write.
// Referencing rows are not cascaded: a sale's line items remain readable
// after the product they point at is tombstoned.
func (s *Service) SoftDelete(ctx context.Context, kind Kind, id int64, actorID int64) error {
	return s.transition(ctx, kind, id, actorID, "soft_delete", s.store.MarkDeleted)
}

// Restore clears the tombstone flag and deletion timestamp.
func (s *Service) Restore(ctx context.Context, kind Kind, id int64, actorID int64) error {
	return s.transition(ctx, kind, id, actorID, "restore", s.store.ClearDeleted)
}

func (s *Service) transition(ctx context.Context, kind Kind, id int64, actorID int64, action string, op func(context.Context, string, int64) (bool, error)) error {
	if id <= 0 {
		return shared.ValidationError("id must be positive")
	}
	table, err := Table(kind)
	if err != nil {
		return err
	}
	changed, err := op(ctx, table, id)
	if err != nil {
		return fmt.Errorf("lifecycle: %s %s: %w", action, kind, err)
	}
	if !changed {
		return shared.NotFoundError(string(kind), id)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "lifecycle:" + action,
			Entity:   string(kind),
			EntityID: fmt.Sprintf("%d", id),
		})
	}
	return nil
}
