package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/innwise/fieldvault/internal/audit/domain"
	cryptoDomain "github.com/innwise/fieldvault/internal/crypto/domain"
	apperrors "github.com/innwise/fieldvault/internal/errors"
)

type signer struct{}

// NewSigner creates an HMAC-based audit entry signer using HKDF-SHA256 for
// key derivation and HMAC-SHA256 for signature generation.
func NewSigner() Signer {
	return &signer{}
}

// deriveSigningKey uses HKDF-SHA256 to derive a 32-byte signing key from the
// master secret, keeping signing key usage separate from any encryption use
// of the same secret. Info parameter is versioned for future algorithm changes.
func (s *signer) deriveSigningKey(masterSecret []byte) ([]byte, error) {
	info := []byte("audit-entry-signing-v1")
	kdf := hkdf.New(sha256.New, masterSecret, nil, info)

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, signingKey); err != nil {
		return nil, err
	}

	return signingKey, nil
}

// canonicalize converts an entry to its canonical byte representation for
// signing. Variable-length fields are length-prefixed to prevent ambiguity;
// timestamps are big-endian Unix nanos. The Signature and IsSigned fields are
// excluded.
func (s *signer) canonicalize(entry *auditDomain.Entry) ([]byte, error) {
	buf := make([]byte, 0, 1024)

	buf = append(buf, entry.ID[:]...)
	buf = appendLengthPrefixed(buf, []byte(entry.RequestID))
	buf = appendLengthPrefixed(buf, []byte(entry.SubjectID))
	buf = appendLengthPrefixed(buf, []byte(entry.TenantID))
	buf = appendLengthPrefixed(buf, []byte(string(entry.Domain)))
	buf = appendLengthPrefixed(buf, []byte(string(entry.Event)))
	buf = appendLengthPrefixed(buf, []byte(string(entry.Category)))
	buf = appendLengthPrefixed(buf, []byte(string(entry.Outcome)))
	buf = appendLengthPrefixed(buf, []byte(entry.Reason))

	if entry.Metadata != nil {
		// json.Marshal sorts map keys, giving a deterministic representation
		metadataBytes, err := json.Marshal(entry.Metadata)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to marshal metadata")
		}
		buf = appendLengthPrefixed(buf, metadataBytes)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	timeBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBytes, uint64(entry.RetentionExpiry.UnixNano()))
	buf = append(buf, timeBytes...)

	binary.BigEndian.PutUint64(timeBytes, uint64(entry.CreatedAt.UnixNano()))
	buf = append(buf, timeBytes...)

	return buf, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
// Panics if data length exceeds uint32 max to prevent integer overflow.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	dataLen := len(data)
	if dataLen > 0xFFFFFFFF {
		panic("data length exceeds uint32 max")
	}
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(dataLen))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}

// Sign generates the HMAC-SHA256 signature for the entry.
func (s *signer) Sign(masterSecret []byte, entry *auditDomain.Entry) ([]byte, error) {
	signingKey, err := s.deriveSigningKey(masterSecret)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to derive signing key")
	}
	defer cryptoDomain.Zero(signingKey)

	canonical, err := s.canonicalize(entry)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to canonicalize entry")
	}

	mac := hmac.New(sha256.New, signingKey)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify checks the entry's signature against its content.
func (s *signer) Verify(masterSecret []byte, entry *auditDomain.Entry) error {
	expectedSig, err := s.Sign(masterSecret, entry)
	if err != nil {
		return apperrors.Wrap(err, "failed to compute expected signature")
	}

	if !hmac.Equal(entry.Signature, expectedSig) {
		return auditDomain.ErrSignatureInvalid
	}

	return nil
}
