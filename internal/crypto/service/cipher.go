package service

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	cryptoDomain "github.com/innwise/fieldvault/internal/crypto/domain"
)

// newAEAD creates an AEAD cipher instance for the given algorithm.
//
// The key must be exactly 32 bytes (256 bits) for both supported algorithms.
// Callers derive keys with deriveKey, which always produces 32 bytes, so a
// size failure here indicates a programming error rather than bad input.
//
// The returned cipher is stateless and safe for concurrent use; each
// encryption operation supplies its own nonce.
func newAEAD(key []byte, alg cryptoDomain.Algorithm) (cipher.AEAD, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, fmt.Errorf("cipher key must be exactly %d bytes", cryptoDomain.KeySize)
	}

	switch alg {
	case cryptoDomain.AESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("failed to create AES cipher: %w", err)
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCM: %w", err)
		}
		return aead, nil
	case cryptoDomain.ChaCha20:
		aead, err := chacha20poly1305.New(key)
		if err != nil {
			return nil, fmt.Errorf("failed to create ChaCha20-Poly1305: %w", err)
		}
		return aead, nil
	default:
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
}
