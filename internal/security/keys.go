package security

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Salt is fixed so every instance sharing the same secret derives the same
// signing key; session cookies must survive restarts and multiple replicas.
const sessionKeySalt = "jarviscs/session/v1"

const keyIterations = 100000

// DeriveSessionKey stretches the configured session secret into a 32-byte
// HMAC signing key.
func DeriveSessionKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret cannot be empty")
	}
	return pbkdf2.Key([]byte(secret), []byte(sessionKeySalt), keyIterations, 32, sha256.New), nil
}
