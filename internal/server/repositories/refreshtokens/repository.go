// Package refreshtokens declares the repository contract for refresh-token
// records. Tokens are stored by hash only and are revoked, never deleted.
package refreshtokens

import (
	"context"
	"time"

	"github.com/shopcraft/api/internal/server/models"
)

// Repository defines operations for issuing, looking up, and revoking
// refresh tokens.
type Repository interface {
	// Create inserts a new token row for userID with the given lookup hash
	// and absolute expiry.
	Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// FindByHash looks up a token by its lookup hash, joining the owning
	// user's role into UserRole. Returns common.ErrNotFound when absent.
	FindByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)

	// Revoke marks the token revoked at now, conditioned on the row still
	// being unrevoked. It returns the number of rows affected: 1 means this
	// caller won the rotation, 0 means somebody else already revoked it.
	Revoke(ctx context.Context, id string, now time.Time) (int64, error)

	// RevokeByHash marks the active token with this hash revoked. Revoking
	// an absent or already-revoked token is not an error.
	RevokeByHash(ctx context.Context, tokenHash string, now time.Time) error

	// RevokeAllForUser revokes every active token belonging to userID. Used
	// as the containment response when token reuse is detected.
	RevokeAllForUser(ctx context.Context, userID string, now time.Time) error
}
