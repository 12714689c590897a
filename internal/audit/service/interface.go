// Package service provides tamper-evidence signing for audit entries.
package service

import (
	auditDomain "github.com/innwise/fieldvault/internal/audit/domain"
)

// Signer generates and verifies HMAC signatures over audit entries. The
// signing key is derived from the master secret per call and never stored.
type Signer interface {
	// Sign computes the signature for an entry. The entry's Signature field
	// is not part of the signed content.
	Sign(masterSecret []byte, entry *auditDomain.Entry) ([]byte, error)

	// Verify recomputes the signature and compares it against entry.Signature.
	// Returns domain.ErrSignatureInvalid on mismatch.
	Verify(masterSecret []byte, entry *auditDomain.Entry) error
}
