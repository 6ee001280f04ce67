// Package checkout orchestrates the sale transaction: stock checks,
// discount resolution, price capture and ledger append happen in one
// database transaction so a sale either commits completely or not at all.
package checkout

import "time"

// Sale is a committed transaction header with its snapshot lines.
type Sale struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	CustomerID *int64     `json:"customer_id,omitempty"`
	Discount   float64    `json:"discount"`
	Total      float64    `json:"total"`
	SoldAt     time.Time  `json:"sold_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	Items      []SaleItem `json:"items,omitempty"`
}

// SaleItem snapshots one cart line at the moment of sale. The name, unit
// price and discount are captured copies: later catalog edits or tombstones
// never change what this sale charged.
type SaleItem struct {
	ID          int64   `json:"id"`
	SaleID      int64   `json:"sale_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int64   `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Discount    float64 `json:"discount"`
	LineTotal   float64 `json:"line_total"`
}

// ProductRow is the slice of a product the orchestrator locks and reads
// inside the transaction.
type ProductRow struct {
	ID    int64
	Name  string
	Price float64
	Stock int64
}
