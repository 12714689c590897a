package service

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/innwise/fieldvault/internal/crypto/domain"
)

// deriveKey stretches a domain secret into a 32-byte cipher key using
// PBKDF2-HMAC-SHA-256 with the fixed iteration count from the domain package.
//
// The salt is random per encryption in the current envelope format and the
// compiled-in cryptoDomain.LegacySalt for the retired format. Callers own the
// returned slice and must Zero it after use.
func deriveKey(secret, salt []byte) []byte {
	return pbkdf2.Key(secret, salt, cryptoDomain.KDFIterations, cryptoDomain.KeySize, sha256.New)
}
