package models

import "time"

// RefreshToken is one issued long-lived credential. Only the SHA-256 hash of
// the raw secret is stored; the raw value lives in the client's cookie.
//
// A token is usable for rotation iff RevokedAt is nil and ExpiresAt is in the
// future. RevokedAt is set exactly once, by rotation, logout, or the
// reuse-detection cascade. Rows are never deleted.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time

	// UserRole is populated by lookups that join the owning user, so rotation
	// can mint an access token without a second read.
	UserRole Role
}

// Active reports whether the token can still be used for rotation at the
// given instant.
func (t *RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && t.ExpiresAt.After(now)
}
