package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes is the number of random bytes in an access token. 32 bytes
// gives 256 bits of entropy; tokens are content-opaque and unguessable.
const tokenBytes = 32

// NewToken generates a new opaque bearer token.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
