package domain

import (
	"encoding/base64"
	"strings"
)

// Envelope is the decoded form of an encrypted field value.
//
// The stored representation is EnvelopePrefix followed by the standard base64
// encoding of version ‖ salt ‖ nonce ‖ ciphertext, where the ciphertext
// carries the AEAD tag on its tail. The result is plain ASCII and can live in
// any JSON or text column.
type Envelope struct {
	// Version selects the cipher and derivation parameters.
	Version byte
	// Salt is the random per-encryption KDF salt.
	Salt []byte
	// Nonce is the AEAD nonce.
	Nonce []byte
	// Ciphertext is the sealed payload including the authentication tag.
	Ciphertext []byte
}

// Encode serializes the envelope into its stored string form.
func (e *Envelope) Encode() string {
	raw := make([]byte, 0, 1+len(e.Salt)+len(e.Nonce)+len(e.Ciphertext))
	raw = append(raw, e.Version)
	raw = append(raw, e.Salt...)
	raw = append(raw, e.Nonce...)
	raw = append(raw, e.Ciphertext...)
	return EnvelopePrefix + base64.StdEncoding.EncodeToString(raw)
}

// DecodeEnvelope parses a stored value in the current envelope format.
//
// Returns ErrNotEncrypted when the prefix is absent and ErrMalformedEnvelope
// when the payload is not valid base64 or is too short to hold a version
// byte, salt, nonce and tag.
func DecodeEnvelope(stored string) (*Envelope, error) {
	payload, ok := strings.CutPrefix(stored, EnvelopePrefix)
	if !ok {
		return nil, ErrNotEncrypted
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrMalformedEnvelope
	}

	// version + salt + nonce + at least a tag
	if len(raw) < 1+SaltSize+NonceSize+TagSize {
		return nil, ErrMalformedEnvelope
	}

	return &Envelope{
		Version:    raw[0],
		Salt:       raw[1 : 1+SaltSize],
		Nonce:      raw[1+SaltSize : 1+SaltSize+NonceSize],
		Ciphertext: raw[1+SaltSize+NonceSize:],
	}, nil
}

// DecodeLegacy parses a stored value in the retired fixed-salt format:
// LegacyPrefix followed by base64 of nonce ‖ ciphertext (tag on the tail).
func DecodeLegacy(stored string) (nonce, ciphertext []byte, err error) {
	payload, ok := strings.CutPrefix(stored, LegacyPrefix)
	if !ok {
		return nil, nil, ErrNotEncrypted
	}

	raw, decodeErr := base64.StdEncoding.DecodeString(payload)
	if decodeErr != nil {
		return nil, nil, ErrMalformedEnvelope
	}

	if len(raw) < NonceSize+TagSize {
		return nil, nil, ErrMalformedEnvelope
	}

	return raw[:NonceSize], raw[NonceSize:], nil
}

// IsEncrypted reports whether the value carries a recognized envelope prefix.
// It never inspects the payload, so it is safe on arbitrary field values.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, EnvelopePrefix) || strings.HasPrefix(value, LegacyPrefix)
}
