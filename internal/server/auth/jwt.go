// Package auth is the stateless token codec: it mints and verifies signed
// access tokens, generates refresh-token secrets with their lookup hashes,
// and hashes passwords. It performs no I/O and holds no state beyond the
// arguments it is given.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shopcraft/api/internal/server/models"
)

// ErrInvalidToken is the single verification outcome for any bad access
// token. Expired, tampered, and forged tokens are deliberately not
// distinguished.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the access-token claims: identity plus role, with expiry
// carried in the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// SignAccessToken mints an HS256-signed access token carrying userID and
// role, expiring after ttl.
func SignAccessToken(userID string, role models.Role, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
		Role:   string(role),
	})
	return token.SignedString(secret)
}

// ParseAccessToken verifies signature and expiry and returns the claims.
// Every failure mode collapses into ErrInvalidToken.
func ParseAccessToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
