package service

import (
	"crypto/rand"
	"fmt"
	"strings"

	cryptoDomain "github.com/innwise/fieldvault/internal/crypto/domain"
)

// EnvelopeService seals and opens field-level encryption envelopes.
//
// Encryption flow:
//  1. Validate the domain secret (at least 32 bytes, ErrKeyTooShort otherwise)
//  2. Generate a random 16-byte salt and derive a 32-byte key with
//     PBKDF2-HMAC-SHA-256 (100,000 iterations)
//  3. Seal the plaintext with the configured AEAD under a fresh 12-byte nonce,
//     authenticating the version byte and salt as associated data
//  4. Encode version ‖ salt ‖ nonce ‖ ciphertext as "ENC:" + base64
//
// Decryption dispatches on the stored prefix: "ENC:" values are opened with
// the parameters recorded in the envelope, "LEGACY:" values with the retired
// fixed-salt AES-256-GCM parameters. Any tampering, truncation or wrong-key
// attempt surfaces as an integrity error without further detail.
//
// The service is stateless and safe for concurrent use. Derived keys are
// zeroed before every return path.
type EnvelopeService struct {
	algorithm cryptoDomain.Algorithm
}

// NewEnvelopeService creates an EnvelopeService that writes envelopes with
// the given algorithm. Decryption always supports every known version.
//
// Returns ErrUnsupportedAlgorithm for ciphers outside the supported set.
func NewEnvelopeService(algorithm cryptoDomain.Algorithm) (*EnvelopeService, error) {
	if _, err := cryptoDomain.VersionForAlgorithm(algorithm); err != nil {
		return nil, err
	}
	return &EnvelopeService{algorithm: algorithm}, nil
}

// Encrypt seals plaintext under the domain secret and returns the stored
// envelope string.
//
// Parameters:
//   - plaintext: The data to seal (can be empty)
//   - secret: The domain secret, at least 32 bytes
//
// Returns:
//   - The "ENC:"-prefixed envelope string, ASCII-safe for JSON and text columns
//   - ErrKeyTooShort when the secret is undersized; the operation never
//     degrades to weaker parameters
func (s *EnvelopeService) Encrypt(plaintext, secret []byte) (string, error) {
	if len(secret) < cryptoDomain.MinSecretSize {
		return "", cryptoDomain.ErrKeyTooShort
	}

	version, err := cryptoDomain.VersionForAlgorithm(s.algorithm)
	if err != nil {
		return "", err
	}

	salt := make([]byte, cryptoDomain.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := deriveKey(secret, salt)
	defer cryptoDomain.Zero(key)

	aead, err := newAEAD(key, s.algorithm)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	env := &cryptoDomain.Envelope{
		Version:    version,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, plaintext, envelopeAAD(version, salt)),
	}

	return env.Encode(), nil
}

// Decrypt opens a stored envelope string with the domain secret.
//
// Both the current "ENC:" format and the retired "LEGACY:" format are
// accepted; values without a recognized prefix return ErrNotEncrypted.
//
// Returns:
//   - The recovered plaintext
//   - ErrKeyTooShort when the secret is undersized
//   - ErrDecryptionFailed (an integrity error) when the tag does not verify,
//     whether from tampering, corruption or a wrong-domain key
func (s *EnvelopeService) Decrypt(stored string, secret []byte) ([]byte, error) {
	if len(secret) < cryptoDomain.MinSecretSize {
		return nil, cryptoDomain.ErrKeyTooShort
	}

	switch {
	case strings.HasPrefix(stored, cryptoDomain.EnvelopePrefix):
		return s.decryptCurrent(stored, secret)
	case strings.HasPrefix(stored, cryptoDomain.LegacyPrefix):
		return s.decryptLegacy(stored, secret)
	default:
		return nil, cryptoDomain.ErrNotEncrypted
	}
}

func (s *EnvelopeService) decryptCurrent(stored string, secret []byte) ([]byte, error) {
	env, err := cryptoDomain.DecodeEnvelope(stored)
	if err != nil {
		return nil, err
	}

	alg, err := cryptoDomain.AlgorithmForVersion(env.Version)
	if err != nil {
		return nil, err
	}

	key := deriveKey(secret, env.Salt)
	defer cryptoDomain.Zero(key)

	aead, err := newAEAD(key, alg)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, envelopeAAD(env.Version, env.Salt))
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	return plaintext, nil
}

// decryptLegacy opens a fixed-salt envelope. The legacy format predates the
// version byte and always used AES-256-GCM without associated data.
func (s *EnvelopeService) decryptLegacy(stored string, secret []byte) ([]byte, error) {
	nonce, ciphertext, err := cryptoDomain.DecodeLegacy(stored)
	if err != nil {
		return nil, err
	}

	key := deriveKey(secret, cryptoDomain.LegacySalt)
	defer cryptoDomain.Zero(key)

	aead, err := newAEAD(key, cryptoDomain.AESGCM)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	return plaintext, nil
}

// envelopeAAD binds the envelope header to the ciphertext so a transplanted
// header fails authentication along with any payload tampering.
func envelopeAAD(version byte, salt []byte) []byte {
	aad := make([]byte, 0, 1+len(salt))
	aad = append(aad, version)
	return append(aad, salt...)
}
