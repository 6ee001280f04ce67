package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianpos/meridian/internal/platform/db"
	"github.com/meridianpos/meridian/internal/shared"
)

// Repository persists ledger data in PostgreSQL. The stock_ledger table is
// append-only by contract: no update or delete statement exists anywhere in
// this package.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by the restock flow.
type TxRepository interface {
	GetProductStockForUpdate(ctx context.Context, productID int64) (int64, error)
	IncrementStock(ctx context.Context, productID, qty int64) error
	InsertEntry(ctx context.Context, entry Entry) (int64, error)
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("ledger repository not initialised")
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		if db.IsLockConflict(err) {
			return fmt.Errorf("%w: another movement touched the same product", shared.ErrConflict)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if db.IsLockConflict(err) {
			return fmt.Errorf("%w: another movement touched the same product", shared.ErrConflict)
		}
		return err
	}
	return nil
}

// Query returns entries newest first, joined with product and category
// metadata. Tombstoned products are joined on purpose so history stays
// readable after catalog cleanup.
func (r *Repository) Query(ctx context.Context, filter Filter) ([]EntryWithProduct, error) {
	if r == nil {
		return nil, errors.New("ledger repository not initialised")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}

	query := `SELECT l.id, l.product_id, l.stock_in, l.stock_out, l.ref_sale_id, l.ref_id, l.note, l.created_by, l.created_at,
       p.name, p.barcode, p.category_id, c.name
FROM stock_ledger l
JOIN products p ON p.id = l.product_id
JOIN categories c ON c.id = p.category_id
WHERE 1=1`
	args := []any{}
	argCount := 0

	if filter.ProductID != 0 {
		argCount++
		query += ` AND l.product_id = $` + strconv.Itoa(argCount)
		args = append(args, filter.ProductID)
	}
	if filter.CategoryID != 0 {
		argCount++
		query += ` AND p.category_id = $` + strconv.Itoa(argCount)
		args = append(args, filter.CategoryID)
	}
	if !filter.From.IsZero() {
		argCount++
		query += ` AND l.created_at >= $` + strconv.Itoa(argCount)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		argCount++
		query += ` AND l.created_at <= $` + strconv.Itoa(argCount)
		args = append(args, filter.To)
	}
	argCount++
	query += ` ORDER BY l.created_at DESC, l.id DESC LIMIT $` + strconv.Itoa(argCount)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []EntryWithProduct{}
	for rows.Next() {
		var e EntryWithProduct
		var refID *string
		if err := rows.Scan(&e.ID, &e.ProductID, &e.StockIn, &e.StockOut, &e.RefSaleID, &refID, &e.Note, &e.CreatedBy, &e.CreatedAt,
			&e.ProductName, &e.Barcode, &e.CategoryID, &e.CategoryName); err != nil {
			return nil, err
		}
		if refID != nil {
			e.RefID = *refID
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *txRepository) GetProductStockForUpdate(ctx context.Context, productID int64) (int64, error) {
	var stock int64
	err := r.tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, shared.NotFoundError("product", productID)
	}
	return stock, err
}

func (r *txRepository) IncrementStock(ctx context.Context, productID, qty int64) error {
	tag, err := r.tx.Exec(ctx, `UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, productID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFoundError("product", productID)
	}
	return nil
}

func (r *txRepository) InsertEntry(ctx context.Context, entry Entry) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO stock_ledger (product_id, stock_in, stock_out, ref_sale_id, ref_id, note, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		entry.ProductID, entry.StockIn, entry.StockOut, entry.RefSaleID, nullString(entry.RefID), entry.Note, entry.CreatedBy, entry.CreatedAt).Scan(&id)
	return id, err
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
