package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// refreshSecretSize is the number of random bytes in a refresh secret.
const refreshSecretSize = 48

// RefreshSecret pairs the raw secret handed to the client with the digest
// stored server-side. The raw value must never be persisted.
type RefreshSecret struct {
	Raw  string
	Hash string
}

// NewRefreshSecret generates a high-entropy refresh secret. Raw is
// base64url-encoded random bytes; Hash is its SHA-256 hex digest.
func NewRefreshSecret() (*RefreshSecret, error) {
	b := make([]byte, refreshSecretSize)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	raw := base64.RawURLEncoding.EncodeToString(b)
	return &RefreshSecret{Raw: raw, Hash: HashRefreshSecret(raw)}, nil
}

// HashRefreshSecret derives the storage/lookup hash for a presented raw
// secret. The digest is deterministic so a presented token can be found by
// hash without ever storing the raw value.
func HashRefreshSecret(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
