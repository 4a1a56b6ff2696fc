// Package password hashes and verifies user passwords with bcrypt.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const DefaultCost = 10

// Hash returns a salted bcrypt hash of plain using the given work factor.
func Hash(plain string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password failed: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plain matches hash.
func Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
