// Package usecase implements domain key resolution, provisioning and rotation.
package usecase

import (
	"context"

	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
	keysDomain "github.com/innwise/fieldvault/internal/keys/domain"
)

// Provider resolves the current data secret for a record domain.
//
// Resolution happens on every guarded request; nothing is cached process-wide,
// so a rotation takes effect without a redeploy. The returned slice is a
// private copy the caller must zero after use.
type Provider interface {
	DomainKey(ctx context.Context, domain fieldcryptDomain.RecordDomain) ([]byte, error)
}

// DomainKeyRepository defines persistence operations for wrapped domain keys.
type DomainKeyRepository interface {
	// Create stores a new key version.
	Create(ctx context.Context, key *keysDomain.DomainKey) error

	// GetActive retrieves the active key version for a domain.
	// Returns ErrNotFound if the domain has no active key.
	GetActive(ctx context.Context, domain fieldcryptDomain.RecordDomain) (*keysDomain.DomainKey, error)

	// GetByVersion retrieves a specific key version for a domain, active or not.
	// Returns ErrNotFound if the version does not exist.
	GetByVersion(
		ctx context.Context,
		domain fieldcryptDomain.RecordDomain,
		version uint,
	) (*keysDomain.DomainKey, error)

	// Deactivate retires every active key version of a domain.
	Deactivate(ctx context.Context, domain fieldcryptDomain.RecordDomain) error

	// MaxVersion returns the highest stored version for a domain, zero when
	// the domain has no keys yet.
	MaxVersion(ctx context.Context, domain fieldcryptDomain.RecordDomain) (uint, error)
}

// KeyUseCase manages keeper-wrapped domain keys: request-time resolution plus
// the provisioning and rotation operations behind the key management CLI.
type KeyUseCase interface {
	Provider

	// DomainKeyVersion unwraps a specific key version. Re-encryption uses it
	// to open ciphertext written under a retired version.
	DomainKeyVersion(
		ctx context.Context,
		domain fieldcryptDomain.RecordDomain,
		version uint,
	) ([]byte, error)

	// CreateDomainKey provisions the first key for a domain.
	// Returns ErrKeyExists if the domain already has an active key.
	CreateDomainKey(ctx context.Context, domain fieldcryptDomain.RecordDomain) (uint, error)

	// RotateDomainKey retires the active key and activates a fresh version.
	// Returns the new version number.
	RotateDomainKey(ctx context.Context, domain fieldcryptDomain.RecordDomain) (uint, error)
}
