// Package lifecycle implements tombstone semantics shared by every entity
// kind. Rows are never physically removed; a deleted_at timestamp excludes
// them from default reads while historical references stay intact.
package lifecycle

import "github.com/meridianpos/meridian/internal/shared"

// Kind names an entity kind that supports soft deletion.
type Kind string

const (
	KindProduct  Kind = "product"
	KindCategory Kind = "category"
	KindCustomer Kind = "customer"
	KindUser     Kind = "user"
	KindSale     Kind = "sale"
	KindEvent    Kind = "event"
	KindDiscount Kind = "event_product_discount"
)

// tables maps kinds to their backing tables. The stock ledger is deliberately
// absent: ledger rows are append-only and may never be deleted, even softly.
var tables = map[Kind]string{
	KindProduct:  "products",
	KindCategory: "categories",
	KindCustomer: "customers",
	KindUser:     "users",
	KindSale:     "sales",
	KindEvent:    "events",
	KindDiscount: "event_product_discounts",
}

// Table resolves a kind to its table name. Unknown kinds are a validation
// error so a caller can never address an arbitrary table.
func Table(kind Kind) (string, error) {
	table, ok := tables[kind]
	if !ok {
		return "", shared.ValidationError("unknown entity kind %q", kind)
	}
	return table, nil
}

// Kinds lists every registered kind.
func Kinds() []Kind {
	out := make([]Kind, 0, len(tables))
	for kind := range tables {
		out = append(out, kind)
	}
	return out
}
