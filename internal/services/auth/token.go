package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const sessionTokenBytes = 32

// NewSessionToken returns 256 bits of entropy as 64 hex characters,
// e.g. 49bf7be3593ce9da969d87adf9f8d4a9946405ba08c1fb498a0af39fda602245.
func NewSessionToken() (string, error) {
	return newOpaqueToken(sessionTokenBytes)
}

func newOpaqueToken(byteLen int) (string, error) {
	if byteLen <= 0 {
		return "", fmt.Errorf("invalid token size")
	}

	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
