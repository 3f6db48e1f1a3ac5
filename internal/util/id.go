package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a random 24-character hex identifier, used for users,
// listings, and OTP challenges.
func NewID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
