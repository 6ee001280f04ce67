package catalog

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/meridianpos/meridian/internal/shared"
)

// Service coordinates catalog operations.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// CreateProduct validates and persists a new product with zero stock.
func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return Product{}, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error())
	}
	return s.repo.Create(ctx, Product{
		Barcode:    req.Barcode,
		Name:       req.Name,
		CategoryID: req.CategoryID,
		Price:      req.Price,
	})
}

// UpdateProduct applies partial updates to a live product.
func (s *Service) UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return Product{}, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error())
	}
	existing, err := s.repo.Get(ctx, id, false)
	if err != nil {
		return Product{}, err
	}
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.CategoryID != nil {
		existing.CategoryID = *req.CategoryID
	}
	if req.Price != nil {
		existing.Price = *req.Price
	}
	if err := s.repo.Update(ctx, id, existing); err != nil {
		return Product{}, err
	}
	return s.repo.Get(ctx, id, false)
}

// GetProduct loads one product. includeDeleted serves audit/restore flows.
func (s *Service) GetProduct(ctx context.Context, id int64, includeDeleted bool) (Product, error) {
	return s.repo.Get(ctx, id, includeDeleted)
}

// GetByBarcode resolves a scanned barcode to a live product.
func (s *Service) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	if barcode == "" {
		return Product{}, shared.ValidationError("barcode required")
	}
	return s.repo.GetByBarcode(ctx, barcode)
}

// ListProducts returns a page of products plus pagination metadata.
func (s *Service) ListProducts(ctx context.Context, filters ListFilters) ([]Product, shared.Pagination, error) {
	products, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return products, shared.NewPagination(filters.Page, filters.PerPage, total), nil
}

// CreateCategory validates and persists a category.
func (s *Service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (Category, error) {
	if err := s.validate.Struct(req); err != nil {
		return Category{}, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error())
	}
	return s.repo.CreateCategory(ctx, Category{Name: req.Name})
}

// ListCategories returns categories, excluding tombstones by default.
func (s *Service) ListCategories(ctx context.Context, includeDeleted bool) ([]Category, error) {
	return s.repo.ListCategories(ctx, includeDeleted)
}
