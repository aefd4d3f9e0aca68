package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPasscode = errors.New("wrong room passcode")
	ErrWeakPasscode    = errors.New("passcode must be at least 4 characters")
)

// HashPasscode hashes an optional room passcode for storage. An empty
// passcode means the room is open and yields an empty hash.
func HashPasscode(passcode string) (string, error) {
	if passcode == "" {
		return "", nil
	}
	if len(passcode) < 4 {
		return "", ErrWeakPasscode
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash passcode: %w", err)
	}
	return string(hash), nil
}

// CheckPasscode verifies a join attempt against the stored hash. Rooms
// without a passcode accept any input.
func CheckPasscode(hash, passcode string) error {
	if hash == "" {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(passcode)); err != nil {
		return ErrInvalidPasscode
	}
	return nil
}
