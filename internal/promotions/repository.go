package promotions

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists promotional events in PostgreSQL.
type Repository interface {
	ActiveDiscounts(ctx context.Context, productID int64, at time.Time) ([]ProductDiscount, error)
	ActiveEvents(ctx context.Context, at time.Time) ([]ActiveEvent, error)
	CreateEvent(ctx context.Context, event Event) (Event, error)
	LinkDiscount(ctx context.Context, link ProductDiscount) (ProductDiscount, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// ActiveDiscounts returns live discount links whose parent event window
// contains at, largest amount first with id as the deterministic tie-break.
func (r *repository) ActiveDiscounts(ctx context.Context, productID int64, at time.Time) ([]ProductDiscount, error) {
	rows, err := r.db.Query(ctx, `SELECT d.id, d.event_id, d.product_id, d.amount
FROM event_product_discounts d
JOIN events e ON e.id = d.event_id
WHERE d.product_id = $1
  AND d.deleted_at IS NULL
  AND e.deleted_at IS NULL
  AND e.starts_at <= $2 AND e.ends_at >= $2
ORDER BY d.amount DESC, d.id ASC`, productID, at)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var discounts []ProductDiscount
	for rows.Next() {
		var d ProductDiscount
		if err := rows.Scan(&d.ID, &d.EventID, &d.ProductID, &d.Amount); err != nil {
			return nil, err
		}
		discounts = append(discounts, d)
	}
	return discounts, rows.Err()
}

func (r *repository) ActiveEvents(ctx context.Context, at time.Time) ([]ActiveEvent, error) {
	rows, err := r.db.Query(ctx, `SELECT e.id, e.name, e.starts_at, e.ends_at, e.created_at,
       d.id, d.event_id, d.product_id, d.amount
FROM events e
LEFT JOIN event_product_discounts d ON d.event_id = e.id AND d.deleted_at IS NULL
WHERE e.deleted_at IS NULL
  AND e.starts_at <= $1 AND e.ends_at >= $1
ORDER BY e.starts_at ASC, e.id ASC, d.id ASC`, at)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := map[int64]*ActiveEvent{}
	var order []int64
	for rows.Next() {
		var evt Event
		var linkID, linkEventID, linkProductID *int64
		var linkAmount *float64
		if err := rows.Scan(&evt.ID, &evt.Name, &evt.StartsAt, &evt.EndsAt, &evt.CreatedAt,
			&linkID, &linkEventID, &linkProductID, &linkAmount); err != nil {
			return nil, err
		}
		entry, ok := byID[evt.ID]
		if !ok {
			entry = &ActiveEvent{Event: evt}
			byID[evt.ID] = entry
			order = append(order, evt.ID)
		}
		if linkID != nil {
			entry.Discounts = append(entry.Discounts, ProductDiscount{
				ID:        *linkID,
				EventID:   *linkEventID,
				ProductID: *linkProductID,
				Amount:    *linkAmount,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	events := make([]ActiveEvent, 0, len(order))
	for _, id := range order {
		events = append(events, *byID[id])
	}
	return events, nil
}

func (r *repository) CreateEvent(ctx context.Context, event Event) (Event, error) {
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, `INSERT INTO events (name, starts_at, ends_at, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		event.Name, event.StartsAt, event.EndsAt, now).Scan(&event.ID)
	if err != nil {
		return Event{}, err
	}
	event.CreatedAt = now
	return event, nil
}

func (r *repository) LinkDiscount(ctx context.Context, link ProductDiscount) (ProductDiscount, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO event_product_discounts (event_id, product_id, amount) VALUES ($1, $2, $3) RETURNING id`,
		link.EventID, link.ProductID, link.Amount).Scan(&link.ID)
	if err != nil {
		return ProductDiscount{}, err
	}
	return link, nil
}
