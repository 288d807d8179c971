package config

import (
	"crypto/subtle"
	"errors"
	"strings"
)

// PIN check failures. Their texts are matched by core.MapError.
var (
	ErrMissingPIN = errors.New("missing pin")
	ErrInvalidPIN = errors.New("invalid pin")
)

// CheckPIN compares given against the configured PIN in constant time.
// An empty configured PIN rejects everything.
func CheckPIN(given, expected string) error {
	given = strings.TrimSpace(given)
	if given == "" {
		return ErrMissingPIN
	}
	if expected == "" || subtle.ConstantTimeCompare([]byte(given), []byte(expected)) != 1 {
		return ErrInvalidPIN
	}
	return nil
}
