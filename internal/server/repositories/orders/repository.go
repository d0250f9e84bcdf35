// Package orders declares the repository contract for orders and their line
// items.
package orders

import (
	"context"

	"github.com/shopcraft/api/internal/server/models"
)

// ListParams filter and paginate the admin order listing. Page and Limit are
// assumed to be already clamped by the service.
type ListParams struct {
	Page   int
	Limit  int
	UserID string
	Status models.OrderStatus
}

// Repository defines persistence operations for orders.
type Repository interface {
	// CreateWithItems inserts the order and its items and computes the total
	// from the item rows. Meant to run inside the placement transaction.
	CreateWithItems(ctx context.Context, userID string, items []models.OrderItem) (*models.Order, error)

	// FindByUser returns the user's orders, newest first, items included.
	FindByUser(ctx context.Context, userID string) ([]models.Order, error)

	// List returns one page of orders matching the filter plus the total row
	// count, items included.
	List(ctx context.Context, params ListParams) ([]models.Order, int64, error)

	// GetByID returns the order with its items or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Order, error)

	// UpdateStatus sets the order's status and returns the updated order.
	// Returns common.ErrNotFound for an unknown order.
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
}
