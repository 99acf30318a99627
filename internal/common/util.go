package common

import (
	"crypto/rand"
	"strings"
	"unicode"
)

// GenerateRandByteArray returns size bytes from crypto/rand.
// It panics if the system random source fails, which only happens on a
// broken platform.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray overwrites b with zeros. Used for passwords read from the
// terminal. Nil is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Initials returns the upper-cased first letter of each word in name,
// e.g. "Juan dela Cruz" -> "JDC". Non-letter words are skipped.
func Initials(name string) string {
	var sb strings.Builder
	for _, w := range strings.Fields(name) {
		for _, r := range w {
			if unicode.IsLetter(r) {
				sb.WriteRune(unicode.ToUpper(r))
			}
			break
		}
	}
	return sb.String()
}
