package catalog

// CreateProductRequest creates a product. Stock starts at zero; units enter
// through the restock flow so every unit on hand has a ledger entry.
type CreateProductRequest struct {
	Barcode    string  `json:"barcode" validate:"required,max=64"`
	Name       string  `json:"name" validate:"required,max=200"`
	CategoryID int64   `json:"category_id" validate:"required,gt=0"`
	Price      float64 `json:"price" validate:"required,gt=0"`
}

// UpdateProductRequest updates mutable product fields. Stock is absent on
// purpose.
type UpdateProductRequest struct {
	Name       *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	CategoryID *int64   `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	Price      *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
}

// CreateCategoryRequest creates a category.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}
