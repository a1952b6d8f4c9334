package random

import (
	"time"

	"github.com/google/uuid"
)

// HashString folds s into a 32-bit value with a base-31 polynomial rolling hash.
func HashString(s string) uint32 {
	var h uint32
	for _, r := range s {
		h = h*31 + uint32(r)
	}
	return h
}

// DeriveSeed builds the generation seed for a user on a calendar day.
// The nonce keeps repeated draws on the same day distinct.
func DeriveSeed(userID string, day time.Time, nonce string) uint32 {
	return HashString(userID + ":" + day.UTC().Format(time.DateOnly) + ":" + nonce)
}

// NewNonce returns a fresh random nonce for DeriveSeed.
func NewNonce() string {
	return uuid.NewString()
}
