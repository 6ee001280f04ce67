package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianpos/meridian/internal/ledger"
	"github.com/meridianpos/meridian/internal/platform/db"
	"github.com/meridianpos/meridian/internal/shared"
)

// RepositoryPort abstracts sale persistence for the orchestrator.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	UserExists(ctx context.Context, id int64) error
	CustomerExists(ctx context.Context, id int64) error
	GetSale(ctx context.Context, id int64, includeDeleted bool) (Sale, error)
}

// TxRepository exposes the writes performed inside one sale transaction.
type TxRepository interface {
	GetProductForUpdate(ctx context.Context, productID int64) (ProductRow, error)
	DecrementStock(ctx context.Context, productID, qty int64) error
	InsertSale(ctx context.Context, sale Sale) (int64, error)
	InsertSaleItems(ctx context.Context, items []SaleItem) error
	AppendLedgerEntry(ctx context.Context, entry ledger.Entry) error
}

// Repository persists sales in PostgreSQL.
type Repository struct {
	pool     *pgxpool.Pool
	lockWait time.Duration
}

// NewRepository constructs Repository. lockWait bounds how long a sale
// blocks on a contended product row before giving up with a conflict.
func NewRepository(pool *pgxpool.Pool, lockWait time.Duration) *Repository {
	if lockWait <= 0 {
		lockWait = 3 * time.Second
	}
	return &Repository{pool: pool, lockWait: lockWait}
}

// WithTx runs the callback in a repeatable-read transaction with a bounded
// lock_timeout. A lock timeout (SQLSTATE 55P03) on a contended product row
// rolls back and surfaces as a retryable conflict.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("checkout repository not initialised")
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockWait.Milliseconds())); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := fn(ctx, &txRepository{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		if db.IsLockConflict(err) {
			return fmt.Errorf("%w: another sale touched the same product", shared.ErrConflict)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		// Serialization failures can also surface at commit.
		if db.IsLockConflict(err) {
			return fmt.Errorf("%w: another sale touched the same product", shared.ErrConflict)
		}
		return err
	}
	return nil
}

// UserExists verifies the selling user exists and is not tombstoned.
func (r *Repository) UserExists(ctx context.Context, id int64) error {
	return r.exists(ctx, "users", "user", id)
}

// CustomerExists verifies the customer exists and is not tombstoned.
func (r *Repository) CustomerExists(ctx context.Context, id int64) error {
	return r.exists(ctx, "customers", "customer", id)
}

func (r *Repository) exists(ctx context.Context, table, entity string, id int64) error {
	var found int64
	err := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE id=$1 AND deleted_at IS NULL`, table), id).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.NotFoundError(entity, id)
	}
	return err
}

// GetSale loads a sale header with its snapshot lines. Lines are returned
// even when the referenced product has since been tombstoned; they carry
// their own captured name and price.
func (r *Repository) GetSale(ctx context.Context, id int64, includeDeleted bool) (Sale, error) {
	query := `SELECT id, user_id, customer_id, discount, total, sold_at, deleted_at FROM sales WHERE id=$1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	var s Sale
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.CustomerID, &s.Discount, &s.Total, &s.SoldAt, &s.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, shared.NotFoundError("sale", id)
	}
	if err != nil {
		return Sale{}, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, sale_id, product_id, product_name, quantity, unit_price, discount, line_total
		 FROM sale_items WHERE sale_id=$1 ORDER BY id`, id)
	if err != nil {
		return Sale{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.Discount, &it.LineTotal); err != nil {
			return Sale{}, err
		}
		s.Items = append(s.Items, it)
	}
	return s, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

// GetProductForUpdate locks the product row for the rest of the transaction.
// Tombstoned products are invisible here: a cart line naming one fails with
// not-found before anything is written.
func (t *txRepository) GetProductForUpdate(ctx context.Context, productID int64) (ProductRow, error) {
	var p ProductRow
	err := t.tx.QueryRow(ctx,
		`SELECT id, name, price, stock FROM products WHERE id=$1 AND deleted_at IS NULL FOR UPDATE`,
		productID).Scan(&p.ID, &p.Name, &p.Price, &p.Stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return ProductRow{}, shared.NotFoundError("product", productID)
	}
	return p, err
}

func (t *txRepository) DecrementStock(ctx context.Context, productID, qty int64) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = NOW() WHERE id=$1 AND stock >= $2`,
		productID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// The caller checked stock under the same row lock, so this only
		// fires if that check was skipped.
		return fmt.Errorf("stock underflow for product %d", productID)
	}
	return nil
}

func (t *txRepository) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO sales (user_id, customer_id, discount, total, sold_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		sale.UserID, sale.CustomerID, sale.Discount, sale.Total, sale.SoldAt).Scan(&id)
	return id, err
}

func (t *txRepository) InsertSaleItems(ctx context.Context, items []SaleItem) error {
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(
			`INSERT INTO sale_items (sale_id, product_id, product_name, quantity, unit_price, discount, line_total)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.SaleID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice, it.Discount, it.LineTotal)
	}
	results := t.tx.SendBatch(ctx, batch)
	defer results.Close()
	for range items {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (t *txRepository) AppendLedgerEntry(ctx context.Context, entry ledger.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	_, err := t.tx.Exec(ctx,
		`INSERT INTO stock_ledger (product_id, stock_in, stock_out, ref_sale_id, ref_id, note, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ProductID, entry.StockIn, entry.StockOut, entry.RefSaleID, entry.RefID, entry.Note, entry.CreatedBy, entry.CreatedAt)
	return err
}
