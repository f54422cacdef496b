package auth

import (
	"crypto/rand"
	"fmt"
)

// shareCodeAlphabet avoids ambiguous characters (no I, O, 0, 1) so codes
// survive being read aloud or copied from a photo of a receipt.
const shareCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// ShareCodeLength is the number of characters in a bill share code.
const ShareCodeLength = 6

// NewShareCode generates a random public join code for a bill.
func NewShareCode() (string, error) {
	buf := make([]byte, ShareCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate share code: %w", err)
	}
	for i, b := range buf {
		buf[i] = shareCodeAlphabet[int(b)%len(shareCodeAlphabet)]
	}
	return string(buf), nil
}
