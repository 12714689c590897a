package domain

import (
	"github.com/innwise/fieldvault/internal/errors"
)

// Envelope operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors.
// Configuration problems (bad algorithm, short secret) are distinguished from
// integrity problems (tampered or corrupted envelopes); the error handling
// layer maps both without revealing cryptographic detail to callers.
var (
	// ErrUnsupportedAlgorithm indicates the configured envelope cipher is unknown.
	//
	// Supported algorithms: AESGCM (AES-256-GCM), ChaCha20 (ChaCha20-Poly1305).
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrConfiguration, "unsupported algorithm")

	// ErrKeyTooShort indicates a domain secret shorter than MinSecretSize bytes.
	//
	// Returned before any cryptographic work happens. A short secret never
	// degrades to a weaker derivation.
	ErrKeyTooShort = errors.Wrap(errors.ErrConfiguration, "encryption secret shorter than 32 bytes")

	// ErrUnsupportedVersion indicates an envelope whose version byte names no
	// known cipher. Either the data was corrupted or it was written by a newer
	// release.
	ErrUnsupportedVersion = errors.Wrap(errors.ErrIntegrity, "unsupported envelope version")

	// ErrMalformedEnvelope indicates a value carrying an envelope prefix whose
	// payload does not decode to a structurally valid envelope.
	ErrMalformedEnvelope = errors.Wrap(errors.ErrIntegrity, "malformed envelope")

	// ErrDecryptionFailed indicates authenticated decryption failed.
	//
	// This error can occur due to:
	//   - Wrong decryption key used
	//   - Ciphertext or tag has been tampered with
	//   - Corrupted stored data
	//
	// The specific cause is deliberately not disclosed.
	ErrDecryptionFailed = errors.Wrap(errors.ErrIntegrity, "decryption failed")

	// ErrNotEncrypted indicates a value without a recognized envelope prefix
	// was handed to Decrypt. Callers are expected to check IsEncrypted first.
	ErrNotEncrypted = errors.Wrap(errors.ErrInvalidInput, "value is not an encrypted envelope")
)
