// Package ledger maintains the append-only record of every stock movement.
// Entries are never updated or deleted; the repository simply exposes no way
// to do either.
package ledger

import (
	"errors"
	"time"
)

// Entry is one immutable stock movement. Exactly one of StockIn/StockOut is
// non-zero for sale- and restock-driven entries.
type Entry struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	StockIn   int64     `json:"stock_in"`
	StockOut  int64     `json:"stock_out"`
	RefSaleID *int64    `json:"ref_sale_id,omitempty"`
	RefID     string    `json:"ref_id,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedBy int64     `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EntryWithProduct joins an entry with product and category metadata for
// audit and history reporting. The join deliberately includes tombstoned
// products so history stays readable.
type EntryWithProduct struct {
	Entry
	ProductName  string `json:"product_name"`
	Barcode      string `json:"barcode"`
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name"`
}

// Filter narrows ledger queries. Entries come back newest first.
type Filter struct {
	ProductID  int64
	CategoryID int64
	From       time.Time
	To         time.Time
	Limit      int
}

// RestockInput describes an inbound stock movement.
type RestockInput struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
	Note      string `json:"note" validate:"max=500"`
	ActorID   int64  `json:"-"`
}

// ErrEmptyMovement is returned when an entry carries no quantity at all.
var ErrEmptyMovement = errors.New("ledger: entry requires a stock-in or stock-out amount")

// ErrNegativeMovement is returned when either amount is negative.
var ErrNegativeMovement = errors.New("ledger: amounts must not be negative")

// Validate checks the append contract: at least one amount non-zero, none
// negative.
func (e Entry) Validate() error {
	if e.StockIn < 0 || e.StockOut < 0 {
		return ErrNegativeMovement
	}
	if e.StockIn == 0 && e.StockOut == 0 {
		return ErrEmptyMovement
	}
	return nil
}
