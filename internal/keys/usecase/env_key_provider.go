package usecase

import (
	"context"

	apperrors "github.com/innwise/fieldvault/internal/errors"
	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
	keysDomain "github.com/innwise/fieldvault/internal/keys/domain"
)

// envKeyProvider implements Provider over a KeySet loaded from DOMAIN_KEYS.
// Used in development and tests; no rotation, no versions.
type envKeyProvider struct {
	keySet *keysDomain.KeySet
}

// DomainKey returns a private copy of the domain's secret from the key set.
func (e *envKeyProvider) DomainKey(
	ctx context.Context,
	domain fieldcryptDomain.RecordDomain,
) ([]byte, error) {
	secret, ok := e.keySet.Get(domain)
	if !ok {
		return nil, apperrors.Wrapf(keysDomain.ErrNoActiveKey, "domain %s", domain)
	}
	return secret, nil
}

// NewEnvKeyProvider creates a Provider over an environment-loaded key set.
func NewEnvKeyProvider(keySet *keysDomain.KeySet) Provider {
	return &envKeyProvider{keySet: keySet}
}
