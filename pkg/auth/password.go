package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashPassword returns the hex-encoded SHA-256 digest of the secret.
// The digest is deliberately unsalted: the booking flow derives a
// customer's initial password from their phone number, so the same
// secret must always produce the same digest.
func HashPassword(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword recomputes the digest of the candidate and compares it
// against the stored one in constant time.
func VerifyPassword(storedHash, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(HashPassword(candidate))) == 1
}
