// Package cryptox hashes and verifies local account passwords with argon2id.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	KeySize  = 32
)

// NewSalt returns a random salt of SaltSize bytes.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

func HashPassword(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize)
}

// VerifyPassword recomputes the hash and compares it in constant time.
func VerifyPassword(password, salt, hash []byte) bool {
	got := HashPassword(password, salt)
	defer common.WipeByteArray(got)
	return subtle.ConstantTimeCompare(got, hash) == 1
}
