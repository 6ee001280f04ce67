package lifecycle

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridianpos/meridian/internal/shared"
)

type memoryStore struct {
	deleted map[string]bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{deleted: make(map[string]bool)}
}

func (s *memoryStore) key(table string, id int64) string {
	return fmt.Sprintf("%s:%d", table, id)
}

func (s *memoryStore) MarkDeleted(ctx context.Context, table string, id int64) (bool, error) {
	key := s.key(table, id)
	if s.deleted[key] {
		return false, nil
	}
	s.deleted[key] = true
	return true, nil
}

func (s *memoryStore) ClearDeleted(ctx context.Context, table string, id int64) (bool, error) {
	key := s.key(table, id)
	if !s.deleted[key] {
		return false, nil
	}
	delete(s.deleted, key)
	return true, nil
}

func TestSoftDeleteAndRestore(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	require.NoError(t, svc.SoftDelete(ctx, KindProduct, 7, 1))
	require.True(t, store.deleted["products:7"])

	// Deleting an already tombstoned row is NotFound, not an idempotent no-op.
	err := svc.SoftDelete(ctx, KindProduct, 7, 1)
	require.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, svc.Restore(ctx, KindProduct, 7, 1))
	require.False(t, store.deleted["products:7"])

	err = svc.Restore(ctx, KindProduct, 7, 1)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUnknownKindRejected(t *testing.T) {
	svc := NewService(newMemoryStore(), nil)
	err := svc.SoftDelete(context.Background(), Kind("stock_ledger"), 1, 1)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestInvalidIDRejected(t *testing.T) {
	svc := NewService(newMemoryStore(), nil)
	err := svc.SoftDelete(context.Background(), KindProduct, 0, 1)
	require.ErrorIs(t, err, shared.ErrValidation)
}
