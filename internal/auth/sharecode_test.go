package auth

import (
	"strings"
	"testing"
)

func TestNewShareCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := NewShareCode()
		if err != nil {
			t.Fatalf("NewShareCode() error: %v", err)
		}
		if len(code) != ShareCodeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), ShareCodeLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(shareCodeAlphabet, c) {
				t.Fatalf("code %q contains %q, outside the alphabet", code, c)
			}
		}
		seen[code] = true
	}

	// 100 draws from a 32^6 space colliding down to a handful would mean
	// the generator is broken.
	if len(seen) < 90 {
		t.Errorf("only %d distinct codes out of 100", len(seen))
	}
}
