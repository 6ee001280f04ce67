package catalog

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridianpos/meridian/internal/shared"
)

type memoryRepo struct {
	products   map[int64]Product
	categories map[int64]Category
	nextID     int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[int64]Product), categories: make(map[int64]Category)}
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	var out []Product
	for _, p := range r.products {
		if p.DeletedAt != nil && !filters.IncludeDeleted {
			continue
		}
		if filters.Search != "" && !strings.Contains(p.Name, filters.Search) {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64, includeDeleted bool) (Product, error) {
	p, ok := r.products[id]
	if !ok || (p.DeletedAt != nil && !includeDeleted) {
		return Product{}, shared.NotFoundError("product", id)
	}
	return p, nil
}

func (r *memoryRepo) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	for _, p := range r.products {
		if p.Barcode == barcode && p.DeletedAt == nil {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("%w: product with barcode %q", shared.ErrNotFound, barcode)
}

func (r *memoryRepo) Create(ctx context.Context, product Product) (Product, error) {
	r.nextID++
	product.ID = r.nextID
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	r.products[product.ID] = product
	return product, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, product Product) error {
	existing, ok := r.products[id]
	if !ok || existing.DeletedAt != nil {
		return shared.NotFoundError("product", id)
	}
	product.ID = id
	r.products[id] = product
	return nil
}

func (r *memoryRepo) CreateCategory(ctx context.Context, category Category) (Category, error) {
	r.nextID++
	category.ID = r.nextID
	r.categories[category.ID] = category
	return category, nil
}

func (r *memoryRepo) ListCategories(ctx context.Context, includeDeleted bool) ([]Category, error) {
	var out []Category
	for _, c := range r.categories {
		if c.DeletedAt != nil && !includeDeleted {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func TestCreateProductStartsWithZeroStock(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, CreateProductRequest{Barcode: "8991002100", Name: "Mineral Water 600ml", CategoryID: 1, Price: 3500})
	require.NoError(t, err)
	require.NotZero(t, p.ID)
	require.EqualValues(t, 0, p.Stock)
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "No Barcode", CategoryID: 1, Price: 100})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateProduct(ctx, CreateProductRequest{Barcode: "X", Name: "Free", CategoryID: 1, Price: 0})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateProductPartial(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, CreateProductRequest{Barcode: "123", Name: "Old", CategoryID: 1, Price: 100})
	require.NoError(t, err)

	newPrice := 250.0
	updated, err := svc.UpdateProduct(ctx, p.ID, UpdateProductRequest{Price: &newPrice})
	require.NoError(t, err)
	require.InDelta(t, 250.0, updated.Price, 0.001)
	require.Equal(t, "Old", updated.Name)
}

func TestTombstonedProductHiddenByDefault(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, CreateProductRequest{Barcode: "123", Name: "Ghost", CategoryID: 1, Price: 100})
	require.NoError(t, err)

	now := time.Now()
	stored := repo.products[p.ID]
	stored.DeletedAt = &now
	repo.products[p.ID] = stored

	_, err = svc.GetProduct(ctx, p.ID, false)
	require.ErrorIs(t, err, shared.ErrNotFound)

	got, err := svc.GetProduct(ctx, p.ID, true)
	require.NoError(t, err)
	require.Equal(t, "Ghost", got.Name)

	visible, _, err := svc.ListProducts(ctx, ListFilters{})
	require.NoError(t, err)
	require.Empty(t, visible)
}

func TestGetByBarcode(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductRequest{
		Barcode:    "4006381333931",
		Name:       "Americano",
		CategoryID: 1,
		Price:      4.50,
	})
	require.NoError(t, err)

	p, err := svc.GetByBarcode(ctx, "4006381333931")
	require.NoError(t, err)
	require.Equal(t, created.ID, p.ID)

	// A well-formed code matching nothing is not-found, not a bad request.
	_, err = svc.GetByBarcode(ctx, "9999999999999")
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.GetByBarcode(ctx, "")
	require.ErrorIs(t, err, shared.ErrValidation)
}
