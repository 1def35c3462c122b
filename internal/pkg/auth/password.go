package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/pouyadh/chat-app-server/internal/pkg/apperror"
)

// HashPassword derives a bcrypt hash for storage.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a stored hash with a candidate password and maps
// a mismatch to Unauthorized.
func VerifyPassword(hashed, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)); err != nil {
		return apperror.Unauthorized("invalid credentials")
	}
	return nil
}
