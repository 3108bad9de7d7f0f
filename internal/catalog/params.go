package catalog

import (
	"github.com/lny-platform/product-catalog/internal/repository"
)

// CreateProductParams is the typed payload for creating a product. All
// fields are required; the price is a pointer so a missing field and an
// explicit zero can be told apart.
type CreateProductParams struct {
	Name     string   `json:"name" validate:"required,notblank,max=200"`
	Price    *float64 `json:"price" validate:"required,gte=0"`
	Category string   `json:"category" validate:"required,notblank,max=100"`
}

// UpdateProductParams is the typed payload for a partial update. Nil fields
// are left untouched and are not re-validated; supplied fields are checked
// with the same rules as on create.
type UpdateProductParams struct {
	Name     *string  `json:"name" validate:"omitnil,notblank,max=200"`
	Price    *float64 `json:"price" validate:"omitnil,gte=0"`
	Category *string  `json:"category" validate:"omitnil,notblank,max=100"`
}

// ListProductsParams selects an optional exact-match category filter and a
// sort key for a product listing.
type ListProductsParams struct {
	Category *string         `validate:"omitnil,notblank"`
	Sort     repository.Sort `validate:"omitempty,enum"`
}
