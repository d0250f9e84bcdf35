// Package products declares the repository contract for catalog products.
package products

import (
	"context"

	"github.com/shopcraft/api/internal/server/models"
)

// ListParams control pagination, search, and ordering for product listings.
// Page and Limit are assumed to be already clamped by the service.
type ListParams struct {
	Page  int
	Limit int
	Query string
	Sort  string // createdAt | price | name
	Order string // asc | desc
}

// Repository defines persistence operations for products.
type Repository interface {
	// Create inserts a new product and returns it with ID and timestamps set.
	Create(ctx context.Context, product *models.Product) (*models.Product, error)

	// GetByID returns the product or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Product, error)

	// List returns one page of products plus the total row count for the
	// same filter.
	List(ctx context.Context, params ListParams) ([]models.Product, int64, error)

	// DecrementStock atomically subtracts quantity from the product's stock,
	// conditioned on enough stock remaining. Returns the number of rows
	// affected: 0 means insufficient stock (or unknown product).
	DecrementStock(ctx context.Context, id string, quantity int) (int64, error)
}
