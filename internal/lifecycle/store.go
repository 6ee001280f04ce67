package lifecycle

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore performs tombstone writes against PostgreSQL. Table names come
// exclusively from the kind registry, never from caller input.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs PGStore.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// MarkDeleted stamps deleted_at on a live row. Returns false when the row
// does not exist or is already tombstoned.
func (s *PGStore) MarkDeleted(ctx context.Context, table string, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, fmt.Sprintf(`UPDATE %s SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, table), id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ClearDeleted removes the tombstone from a deleted row. Returns false when
// the row does not exist or is not tombstoned.
func (s *PGStore) ClearDeleted(ctx context.Context, table string, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, fmt.Sprintf(`UPDATE %s SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL`, table), id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
