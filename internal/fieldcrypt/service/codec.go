package service

import (
	"bytes"
	"encoding/json"
	"log/slog"

	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"

	cryptoDomain "github.com/innwise/fieldvault/internal/crypto/domain"
	"github.com/innwise/fieldvault/internal/errors"
)

// EnvelopeSealer seals and opens stored envelope strings. Implemented by
// crypto/service.EnvelopeService.
type EnvelopeSealer interface {
	Encrypt(plaintext, secret []byte) (string, error)
	Decrypt(stored string, secret []byte) ([]byte, error)
}

// FailureMode controls what happens when a single field cannot be processed.
type FailureMode string

const (
	// FailOpen logs the failure, leaves the field untouched and continues.
	FailOpen FailureMode = "open"

	// FailClosed removes the failing field from the record, flags the record
	// as degraded and continues. Nothing half-processed is ever kept.
	FailClosed FailureMode = "closed"
)

// Report summarizes one codec pass over a record.
type Report struct {
	// Encrypted counts fields sealed during this pass.
	Encrypted int
	// Decrypted counts fields opened during this pass.
	Decrypted int
	// Skipped counts fields left alone: already-sealed values on encrypt,
	// plaintext values on decrypt.
	Skipped int
	// FailedPaths lists fields that could not be processed.
	FailedPaths []string
	// Degraded is set when FailClosed removed at least one field.
	Degraded bool
}

// Failed reports whether any field failed during the pass.
func (r *Report) Failed() bool {
	return len(r.FailedPaths) > 0
}

// Codec applies a field policy to records: sealing sensitive paths before
// they reach storage and opening them after they are read back.
//
// Field values of any JSON type are supported; leaves are JSON-serialized
// before sealing and decoded (with number fidelity preserved) after opening.
// Both passes are idempotent: encrypting an already-encrypted record or
// decrypting plaintext fields changes nothing, so re-running a migration or
// re-saving a partially processed record is safe.
//
// One failing field never aborts the pass. The failure mode decides whether
// the field is left as-is (FailOpen) or removed (FailClosed); configuration
// errors such as an undersized key abort immediately in either mode because
// they would fail every field the same way.
type Codec struct {
	sealer EnvelopeSealer
	mode   FailureMode
	logger *slog.Logger
}

// NewCodec creates a Codec with the given sealer and failure mode.
func NewCodec(sealer EnvelopeSealer, mode FailureMode, logger *slog.Logger) (*Codec, error) {
	if mode != FailOpen && mode != FailClosed {
		return nil, errors.Wrapf(errors.ErrConfiguration, "unknown field failure mode %q", mode)
	}
	return &Codec{sealer: sealer, mode: mode, logger: logger}, nil
}

// EncryptFields seals every sensitive path of the policy in place.
//
// Absent paths are skipped silently. String values already carrying an
// envelope prefix are counted as skipped, which makes the pass a no-op on
// already-encrypted records.
func (c *Codec) EncryptFields(
	rec fieldcryptDomain.Record,
	policy *fieldcryptDomain.FieldPolicy,
	secret []byte,
) (*Report, error) {
	report := &Report{}

	for _, path := range policy.SensitivePaths {
		value, ok := rec.Get(path)
		if !ok {
			continue
		}

		if stored, isString := value.(string); isString && cryptoDomain.IsEncrypted(stored) {
			report.Skipped++
			continue
		}

		plaintext, err := json.Marshal(value)
		if err != nil {
			if abort := c.fieldFailed(rec, policy, path, err, report); abort != nil {
				return nil, abort
			}
			continue
		}

		sealed, err := c.sealer.Encrypt(plaintext, secret)
		if err != nil {
			if abort := c.fieldFailed(rec, policy, path, err, report); abort != nil {
				return nil, abort
			}
			continue
		}

		if err := rec.Set(path, sealed); err != nil {
			if abort := c.fieldFailed(rec, policy, path, err, report); abort != nil {
				return nil, abort
			}
			continue
		}
		report.Encrypted++
	}

	return report, nil
}

// DecryptFields opens every sensitive path of the policy in place.
//
// Plaintext values pass through unchanged so records written before a field
// was added to the policy, or mixed legacy data, decode without errors.
func (c *Codec) DecryptFields(
	rec fieldcryptDomain.Record,
	policy *fieldcryptDomain.FieldPolicy,
	secret []byte,
) (*Report, error) {
	report := &Report{}

	for _, path := range policy.SensitivePaths {
		value, ok := rec.Get(path)
		if !ok {
			continue
		}

		stored, isString := value.(string)
		if !isString || !cryptoDomain.IsEncrypted(stored) {
			report.Skipped++
			continue
		}

		plaintext, err := c.sealer.Decrypt(stored, secret)
		if err != nil {
			if abort := c.fieldFailed(rec, policy, path, err, report); abort != nil {
				return nil, abort
			}
			continue
		}

		decoded, err := decodeValue(plaintext)
		if err != nil {
			if abort := c.fieldFailed(rec, policy, path, err, report); abort != nil {
				return nil, abort
			}
			continue
		}

		if err := rec.Set(path, decoded); err != nil {
			if abort := c.fieldFailed(rec, policy, path, err, report); abort != nil {
				return nil, abort
			}
			continue
		}
		report.Decrypted++
	}

	return report, nil
}

// fieldFailed applies the failure mode to one field. A non-nil return means
// the whole pass must abort (configuration errors only).
func (c *Codec) fieldFailed(
	rec fieldcryptDomain.Record,
	policy *fieldcryptDomain.FieldPolicy,
	path string,
	err error,
	report *Report,
) error {
	if errors.Is(err, errors.ErrConfiguration) {
		return err
	}

	report.FailedPaths = append(report.FailedPaths, path)
	c.logger.Warn("field codec failure",
		slog.String("collection", policy.Collection),
		slog.String("path", path),
		slog.String("mode", string(c.mode)),
		slog.Any("error", err),
	)

	if c.mode == FailClosed {
		rec.Delete(path)
		report.Degraded = true
	}
	return nil
}

// decodeValue decodes a JSON-serialized leaf, keeping numbers as json.Number
// so integer account numbers and monetary values survive the round trip.
func decodeValue(plaintext []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(plaintext))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}
