package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianpos/meridian/internal/shared"
)

const productColumns = `id, barcode, name, category_id, price, stock, deleted_at, created_at, updated_at`

// Repository persists catalog data in PostgreSQL.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64, includeDeleted bool) (Product, error)
	GetByBarcode(ctx context.Context, barcode string) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id int64, product Product) error
	CreateCategory(ctx context.Context, category Category) (Category, error)
	ListCategories(ctx context.Context, includeDeleted bool) ([]Category, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	where := ``
	args := []any{}
	argCount := 0

	if !filters.IncludeDeleted {
		where += ` AND deleted_at IS NULL`
	}
	if filters.CategoryID != nil {
		argCount++
		where += ` AND category_id = $` + strconv.Itoa(argCount)
		args = append(args, *filters.CategoryID)
	}
	if filters.Search != "" {
		argCount++
		where += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR barcode ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE 1=1`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1` + where + ` ORDER BY name ASC`
	perPage := filters.PerPage
	if perPage <= 0 {
		perPage = 50
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, perPage)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, (page-1)*perPage)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Barcode, &p.Name, &p.CategoryID, &p.Price, &p.Stock, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64, includeDeleted bool) (Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	var p Product
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Barcode, &p.Name, &p.CategoryID, &p.Price, &p.Stock, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.NotFoundError("product", id)
	}
	return p, err
}

func (r *repository) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	var p Product
	err := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE barcode = $1 AND deleted_at IS NULL`, barcode).
		Scan(&p.ID, &p.Barcode, &p.Name, &p.CategoryID, &p.Price, &p.Stock, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, fmt.Errorf("%w: product with barcode %q", shared.ErrNotFound, barcode)
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, `INSERT INTO products (barcode, name, category_id, price, stock, created_at, updated_at)
VALUES ($1, $2, $3, $4, 0, $5, $5) RETURNING id`,
		product.Barcode, product.Name, product.CategoryID, product.Price, now).Scan(&product.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Product{}, shared.ValidationError("barcode %q already exists", product.Barcode)
		}
		return Product{}, err
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

func (r *repository) Update(ctx context.Context, id int64, product Product) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET name = $1, category_id = $2, price = $3, updated_at = NOW()
WHERE id = $4 AND deleted_at IS NULL`,
		product.Name, product.CategoryID, product.Price, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFoundError("product", id)
	}
	return nil
}

func (r *repository) CreateCategory(ctx context.Context, category Category) (Category, error) {
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, `INSERT INTO categories (name, created_at) VALUES ($1, $2) RETURNING id`,
		category.Name, now).Scan(&category.ID)
	if err != nil {
		return Category{}, err
	}
	category.CreatedAt = now
	return category, nil
}

func (r *repository) ListCategories(ctx context.Context, includeDeleted bool) ([]Category, error) {
	query := `SELECT id, name, deleted_at, created_at FROM categories`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	rows, err := r.db.Query(ctx, query+` ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.DeletedAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
