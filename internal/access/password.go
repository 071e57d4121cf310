package access

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is lowered by tests
var bcryptCost = bcrypt.DefaultCost

// ErrEmptyPassword is returned when hashing a blank password
var ErrEmptyPassword = errors.New("password must not be empty")

// HashPassword returns the bcrypt hash stored on a user
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword validates a plain-text password against its hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
