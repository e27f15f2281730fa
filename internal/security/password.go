// Package security hashes and verifies account passwords.
package security

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor. Tests lower it to keep fixtures fast.
var Cost = bcrypt.DefaultCost

// HashPassword returns the bcrypt hash of plain. Values that are already
// bcrypt hashes are returned unchanged so re-saving a record is safe.
func HashPassword(plain string) (string, error) {
	if plain == "" || IsHashed(plain) {
		return plain, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches hash.
func CheckPassword(hash, plain string) bool {
	if hash == "" || plain == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// IsHashed reports whether s looks like a bcrypt hash.
func IsHashed(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
