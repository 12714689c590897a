// Package domain defines per-domain data secrets and the keeper abstraction
// used to wrap them.
//
// Every record domain (hr, banking, payroll, personal, finance) has its own
// secret. Secrets are resolved fresh on every guarded request so a rotation
// takes effect without a redeploy, and a secret handed to a caller is always a
// private copy the caller zeroes after use.
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
)

// DomainKey is one stored version of a domain's data secret, wrapped by the
// configured keeper. Only one version per domain is active at a time; retired
// versions stay unwrappable so older ciphertext can be re-encrypted.
type DomainKey struct {
	ID         uuid.UUID
	Domain     fieldcryptDomain.RecordDomain
	Version    uint
	WrappedKey []byte // Keeper-wrapped secret material
	IsActive   bool
	CreatedAt  time.Time
}

// Keeper wraps and unwraps secret material. *gocloud.dev/secrets.Keeper
// implements this interface.
type Keeper interface {
	// Encrypt wraps plaintext key material.
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)

	// Decrypt unwraps previously wrapped key material.
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)

	// Close releases keeper resources.
	Close() error
}
