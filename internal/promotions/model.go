package promotions

import "time"

// Event is a promotional window. A discount linked to it only applies while
// the sale timestamp falls inside [StartsAt, EndsAt] and neither the event
// nor the link is tombstoned.
type Event struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	StartsAt  time.Time  `json:"starts_at"`
	EndsAt    time.Time  `json:"ends_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ProductDiscount links an event to a product with an absolute amount taken
// off the unit price.
type ProductDiscount struct {
	ID        int64      `json:"id"`
	EventID   int64      `json:"event_id"`
	ProductID int64      `json:"product_id"`
	Amount    float64    `json:"amount"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// ActiveEvent is an event together with its live discount links, as exposed
// to read-side consumers.
type ActiveEvent struct {
	Event
	Discounts []ProductDiscount `json:"discounts"`
}

// CreateEventRequest creates a promotional window.
type CreateEventRequest struct {
	Name     string    `json:"name" validate:"required,max=200"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
	EndsAt   time.Time `json:"ends_at" validate:"required"`
}

// LinkDiscountRequest attaches a product discount to an event.
type LinkDiscountRequest struct {
	EventID   int64   `json:"event_id" validate:"required,gt=0"`
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
}
