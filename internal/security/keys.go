package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const privateKeyBytes = 32

// GeneratePrivateKey returns a fresh random secret for a new account, hex encoded.
func GeneratePrivateKey() (string, error) {
	buf := make([]byte, privateKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate private key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
