package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewShortID returns an 8-character hex identifier, short enough to type
// into a chat command.
func NewShortID() string {
	bytes := make([]byte, 4)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
