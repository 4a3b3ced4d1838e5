package relay

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*()-=_+[]{}|;:'\",./<>?"
	// DefaultSecretLength is the install secret length.
	DefaultSecretLength = 32
)

// GenerateSecret returns a random string drawn uniformly from a 91 character alphabet.
func GenerateSecret(length int) (string, error) {
	if length <= 0 {
		length = DefaultSecretLength
	}

	max := big.NewInt(int64(len(secretAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate secret: %w", err)
		}
		out[i] = secretAlphabet[n.Int64()]
	}
	return string(out), nil
}
