package checkout

import "time"

// CartLine is one requested product/quantity pair.
type CartLine struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"required,gt=0"`
}

// CreateSaleRequest is the typed cart submitted to the orchestrator.
// Validation runs before the transaction opens; the idempotency key comes
// from the Idempotency-Key header, not the body. SoldAt, when supplied,
// is the sale timestamp used for discount resolution and persisted on the
// header; it defaults to now.
type CreateSaleRequest struct {
	UserID         int64      `json:"user_id" validate:"required,gt=0"`
	CustomerID     *int64     `json:"customer_id" validate:"omitempty,gt=0"`
	Discount       float64    `json:"discount" validate:"gte=0"`
	SoldAt         *time.Time `json:"sold_at"`
	Lines          []CartLine `json:"lines" validate:"required,min=1,max=100,dive"`
	IdempotencyKey string     `json:"-"`
}

// SaleResponse wraps a committed sale with its printable receipt.
type SaleResponse struct {
	Sale    Sale   `json:"sale"`
	Receipt string `json:"receipt"`
}
