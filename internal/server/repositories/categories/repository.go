// Package categories declares the repository contract for product categories.
package categories

import (
	"context"

	"github.com/shopcraft/api/internal/server/models"
)

// Repository defines persistence operations for categories.
type Repository interface {
	// List returns all categories ordered by name.
	List(ctx context.Context) ([]models.Category, error)

	// Create inserts a new category. A duplicate name returns
	// common.ErrAlreadyExists.
	Create(ctx context.Context, name string) (*models.Category, error)
}
