package csrf

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// generateToken reads n bytes from r and hex-encodes them (2n lowercase chars).
func generateToken(r io.Reader, n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GenerateToken returns a 64-character hex token from crypto/rand.
func GenerateToken() (string, error) {
	return generateToken(rand.Reader, DefaultConfig().TokenBytes)
}
