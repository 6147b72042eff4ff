// Package codes generates opaque tokens and the short codes used in meeting links.
package codes

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidLength = errors.New("invalid code length")

const (
	// StateByteLength is the entropy of an OAuth state nonce (22 base64 chars).
	StateByteLength = 16

	// SessionByteLength is the entropy of a session identifier (48 hex chars).
	SessionByteLength = 24
)

// GenerateState creates a URL-safe OAuth state nonce.
func GenerateState() (string, error) {
	return GenerateURLSafeToken(StateByteLength)
}

// GenerateSecureToken creates a cryptographically secure hex token.
// byteLength specifies the number of random bytes (output will be 2x this length in hex).
func GenerateSecureToken(byteLength int) (string, error) {
	if byteLength < 1 {
		return "", ErrInvalidLength
	}

	b := make([]byte, byteLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return hex.EncodeToString(b), nil
}

// GenerateURLSafeToken creates a URL-safe base64-encoded token.
func GenerateURLSafeToken(byteLength int) (string, error) {
	if byteLength < 1 {
		return "", ErrInvalidLength
	}

	b := make([]byte, byteLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// MeetCode derives a stable xxx-xxxx-xxx code from seed. The same seed
// always yields the same code.
func MeetCode(seed string) string {
	sum := md5.Sum([]byte(seed))
	h := hex.EncodeToString(sum[:])
	return h[0:3] + "-" + h[3:7] + "-" + h[7:10]
}

// FormatCode formats a code with dashes for readability.
// e.g., "ABCD1234" -> "ABCD-1234" with groupSize=4
func FormatCode(code string, groupSize int) string {
	if groupSize < 1 || len(code) <= groupSize {
		return code
	}

	var parts []string
	for i := 0; i < len(code); i += groupSize {
		end := min(i+groupSize, len(code))
		parts = append(parts, code[i:end])
	}

	return strings.Join(parts, "-")
}
