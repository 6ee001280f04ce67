package catalog

import "time"

// Product is the sellable unit. Stock only changes through the ledger
// flows (restock and sale decrement); products referenced by a sale are
// never physically removed.
type Product struct {
	ID         int64      `json:"id"`
	Barcode    string     `json:"barcode"`
	Name       string     `json:"name"`
	CategoryID int64      `json:"category_id"`
	Price      float64    `json:"price"`
	Stock      int64      `json:"stock"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Category groups products for ledger reporting.
type Category struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ListFilters narrows product listings. Tombstoned rows are excluded unless
// IncludeDeleted is set, which audit and restore flows use.
type ListFilters struct {
	CategoryID     *int64
	Search         string
	IncludeDeleted bool
	Page           int
	PerPage        int
}
