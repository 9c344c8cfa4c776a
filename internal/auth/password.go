// Package auth holds the credential-hashing scheme shared by the HTTP
// session service and the startup seed.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashPassword returns the stored form of a password. Seeded users and
// login verification must both go through this function.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
