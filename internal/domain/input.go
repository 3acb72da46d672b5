package domain

import (
	"fmt"
	"strings"
)

// MinAddressLength is the shortest address accepted before a geocoding call
// is attempted. Anything shorter cannot name a street and a locality.
const MinAddressLength = 5

// Input is what a resolution starts from: either an Address or Coordinates.
// The set of implementations is closed to this package.
type Input interface {
	isInput()
}

// Address is a free-text postal address.
type Address string

func (Address) isInput()     {}
func (Coordinates) isInput() {}

// Validate rejects empty or implausibly short addresses.
func (a Address) Validate() error {
	trimmed := strings.TrimSpace(string(a))
	if trimmed == "" {
		return fmt.Errorf("address is required: %w", ErrInvalidInput)
	}
	if len([]rune(trimmed)) < MinAddressLength {
		return fmt.Errorf("address must be at least %d characters: %w", MinAddressLength, ErrInvalidInput)
	}
	return nil
}
