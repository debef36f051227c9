package wallet

import (
	"crypto/rand"
	"fmt"
)

const (
	// NameLength is the fixed length of generated wallet names.
	NameLength = 8

	nameAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateName produces a random wallet name of NameLength characters drawn
// from A-Z and 0-9 using a cryptographically strong source. Uniqueness is not
// guaranteed here; callers must check the store and retry on collision.
func GenerateName() (string, error) {
	buf := make([]byte, NameLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate wallet name: %w", err)
	}
	for i, b := range buf {
		buf[i] = nameAlphabet[int(b)%len(nameAlphabet)]
	}
	return string(buf), nil
}
