// Package users declares the repository contract for identity records.
package users

import (
	"context"

	"github.com/shopcraft/api/internal/server/models"
)

// Repository defines persistence operations for users.
type Repository interface {
	// Create inserts a new user and returns it with ID and CreatedAt set.
	// Inserting a duplicate email returns common.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns the user with the given email (case-sensitive
	// match) or common.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the user with the given ID or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)
}
