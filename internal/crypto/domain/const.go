package domain

// Algorithm represents the AEAD cipher used inside an envelope.
//
// Both supported algorithms provide Authenticated Encryption with Associated
// Data, so every envelope is tamper-evident: modifying a single byte of the
// stored value makes decryption fail.
type Algorithm string

const (
	// AESGCM represents the AES-256-GCM authenticated encryption algorithm.
	//
	// The default envelope cipher. Uses a 256-bit key, a 12-byte nonce and a
	// 16-byte authentication tag, and benefits from AES-NI acceleration on
	// server hardware.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents the ChaCha20-Poly1305 authenticated encryption algorithm.
	//
	// Same key, nonce and tag sizes as AESGCM with constant-time software
	// performance on hardware without AES acceleration.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// Envelope version bytes. The version is the first byte of the decoded
// envelope and selects the AEAD cipher and key-derivation parameters.
const (
	// VersionAESGCM marks an envelope sealed with AES-256-GCM.
	VersionAESGCM byte = 0x01

	// VersionChaCha20 marks an envelope sealed with ChaCha20-Poly1305.
	VersionChaCha20 byte = 0x02
)

// Envelope layout and key-derivation parameters.
const (
	// EnvelopePrefix marks values produced by the current envelope format.
	EnvelopePrefix = "ENC:"

	// LegacyPrefix marks values produced by the retired fixed-salt format.
	// Legacy envelopes are decrypted but never written.
	LegacyPrefix = "LEGACY:"

	// KeySize is the derived key size in bytes for all envelope ciphers.
	KeySize = 32

	// MinSecretSize is the minimum length of a domain secret in bytes.
	// Shorter secrets are a configuration error, never silently accepted.
	MinSecretSize = 32

	// SaltSize is the per-encryption KDF salt size in bytes.
	SaltSize = 16

	// NonceSize is the AEAD nonce size in bytes for both ciphers.
	NonceSize = 12

	// TagSize is the AEAD authentication tag size in bytes.
	TagSize = 16

	// KDFIterations is the PBKDF2-HMAC-SHA-256 iteration count used for both
	// the current and the legacy envelope formats.
	KDFIterations = 100_000
)

// LegacySalt is the fixed KDF salt of the retired envelope format. Kept only
// so data written before per-encryption salts can still be read.
var LegacySalt = []byte("innwise-legacy-1")

// AlgorithmForVersion maps an envelope version byte to its cipher.
func AlgorithmForVersion(version byte) (Algorithm, error) {
	switch version {
	case VersionAESGCM:
		return AESGCM, nil
	case VersionChaCha20:
		return ChaCha20, nil
	default:
		return "", ErrUnsupportedVersion
	}
}

// VersionForAlgorithm maps a cipher to the envelope version byte it writes.
func VersionForAlgorithm(alg Algorithm) (byte, error) {
	switch alg {
	case AESGCM:
		return VersionAESGCM, nil
	case ChaCha20:
		return VersionChaCha20, nil
	default:
		return 0, ErrUnsupportedAlgorithm
	}
}
