package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost balances verification latency against brute-force resistance;
// the hub verifies logins inline, so this stays at the library default.
const bcryptCost = 10

// HashSecret derives a bcrypt hash of the DM shared secret.
func HashSecret(secret string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash secret: %w", err)
	}
	return hash, nil
}

// VerifySecret compares a candidate secret against the stored hash.
func VerifySecret(hash []byte, secret string) error {
	return bcrypt.CompareHashAndPassword(hash, []byte(secret))
}
