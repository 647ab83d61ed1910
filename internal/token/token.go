// Package token generates the opaque access tokens that gate every
// recipient-facing invitation operation.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const (
	// rawBytes of entropy per token; hex encoding doubles it on the wire.
	rawBytes = 16

	// Length of an encoded token in characters.
	Length = 2 * rawBytes
)

// Generate returns a fresh access token: rawBytes of cryptographically
// strong randomness, lowercase hex encoded. The token is the only
// credential for an invitation, so an entropy failure aborts creation.
func Generate() (string, error) {
	buf := make([]byte, rawBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
