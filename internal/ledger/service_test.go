package ledger

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridianpos/meridian/internal/shared"
)

type memoryRepo struct {
	stock   map[int64]int64
	entries []Entry
	nextID  int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{stock: make(map[int64]int64)}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) Query(ctx context.Context, filter Filter) ([]EntryWithProduct, error) {
	out := []EntryWithProduct{}
	for _, e := range r.entries {
		if filter.ProductID != 0 && e.ProductID != filter.ProductID {
			continue
		}
		out = append(out, EntryWithProduct{Entry: e})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (tx *memoryTx) GetProductStockForUpdate(ctx context.Context, productID int64) (int64, error) {
	stock, ok := tx.repo.stock[productID]
	if !ok {
		return 0, shared.NotFoundError("product", productID)
	}
	return stock, nil
}

func (tx *memoryTx) IncrementStock(ctx context.Context, productID, qty int64) error {
	tx.repo.stock[productID] += qty
	return nil
}

func (tx *memoryTx) InsertEntry(ctx context.Context, entry Entry) (int64, error) {
	tx.repo.nextID++
	entry.ID = tx.repo.nextID
	tx.repo.entries = append(tx.repo.entries, entry)
	return entry.ID, nil
}

func TestRestockAppendsExactlyOneEntry(t *testing.T) {
	repo := newMemoryRepo()
	repo.stock[1] = 4
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	entry, err := svc.Restock(ctx, RestockInput{ProductID: 1, Quantity: 6, Note: "GRN#17"})
	require.NoError(t, err)
	require.EqualValues(t, 6, entry.StockIn)
	require.EqualValues(t, 0, entry.StockOut)
	require.NotEmpty(t, entry.RefID)
	require.EqualValues(t, 10, repo.stock[1])
	require.Len(t, repo.entries, 1)
}

func TestRestockUnknownProduct(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	_, err := svc.Restock(context.Background(), RestockInput{ProductID: 99, Quantity: 1})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRestockValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	ctx := context.Background()

	_, err := svc.Restock(ctx, RestockInput{ProductID: 1, Quantity: 0})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Restock(ctx, RestockInput{ProductID: 1, Quantity: -5})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestEntryValidate(t *testing.T) {
	require.ErrorIs(t, Entry{}.Validate(), ErrEmptyMovement)
	require.ErrorIs(t, Entry{StockIn: -1}.Validate(), ErrNegativeMovement)
	require.ErrorIs(t, Entry{StockOut: -1}.Validate(), ErrNegativeMovement)
	require.NoError(t, Entry{StockIn: 3}.Validate())
	require.NoError(t, Entry{StockOut: 2}.Validate())
}

func TestQueryRequiresFilter(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	_, err := svc.Query(context.Background(), Filter{})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestQueryNewestFirst(t *testing.T) {
	repo := newMemoryRepo()
	repo.stock[1] = 0
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Restock(ctx, RestockInput{ProductID: 1, Quantity: int64(i + 1)})
		require.NoError(t, err)
	}

	entries, err := svc.Query(ctx, Filter{ProductID: 1})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.EqualValues(t, 3, entries[0].StockIn, "latest restock first")
	require.EqualValues(t, 1, entries[2].StockIn)
}

func TestQueryInvertedRangeRejected(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	now := time.Now()
	_, err := svc.Query(context.Background(), Filter{ProductID: 1, From: now, To: now.Add(-time.Hour)})
	require.ErrorIs(t, err, shared.ErrValidation)
}
