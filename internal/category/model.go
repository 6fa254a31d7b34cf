package category

import (
	"time"

	"github.com/MikeMC777/inventory-api/internal/product"
)

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// Products carried by reads, never written through this package.
	Products []product.Product `json:"products"`
}

// CreateCategoryRequest payload of creation.
// swagger:model CreateCategoryRequest
type CreateCategoryRequest struct {
	Name string `json:"name" example:"Peripherals"`
}

// UpdateCategoryRequest payload of partial update.
// swagger:model UpdateCategoryRequest
type UpdateCategoryRequest struct {
	Name *string `json:"name"`
}
