// Package gamecode generates the short join codes players share to find a game.
package gamecode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// codeChars excludes glyphs that read ambiguously when shared aloud or
// scrawled on paper (0/O, 1/I).
const codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// DefaultLength is the join-code length used when none is configured
const DefaultLength = 6

// Generate returns a random join code of the given length
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	var b strings.Builder
	b.Grow(length)
	max := big.NewInt(int64(len(codeChars)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		b.WriteByte(codeChars[n.Int64()])
	}
	return b.String(), nil
}

// Normalize canonicalizes a user-supplied code for lookup; codes are
// case-insensitive and tolerant of surrounding whitespace.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
