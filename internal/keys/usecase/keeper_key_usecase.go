package usecase

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/innwise/fieldvault/internal/crypto/domain"
	"github.com/innwise/fieldvault/internal/database"
	apperrors "github.com/innwise/fieldvault/internal/errors"
	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
	keysDomain "github.com/innwise/fieldvault/internal/keys/domain"
)

// keeperKeyUseCase implements KeyUseCase over the domain_keys table, with
// secret material wrapped by the configured keeper.
type keeperKeyUseCase struct {
	domainKeyRepo DomainKeyRepository
	keeper        keysDomain.Keeper
	txManager     database.TxManager
}

// DomainKey resolves and unwraps the active secret for a domain.
func (k *keeperKeyUseCase) DomainKey(
	ctx context.Context,
	domain fieldcryptDomain.RecordDomain,
) ([]byte, error) {
	key, err := k.domainKeyRepo.GetActive(ctx, domain)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Wrapf(keysDomain.ErrNoActiveKey, "domain %s", domain)
		}
		return nil, err
	}

	return k.unwrap(ctx, key)
}

// DomainKeyVersion unwraps a specific key version, active or retired.
func (k *keeperKeyUseCase) DomainKeyVersion(
	ctx context.Context,
	domain fieldcryptDomain.RecordDomain,
	version uint,
) ([]byte, error) {
	key, err := k.domainKeyRepo.GetByVersion(ctx, domain, version)
	if err != nil {
		return nil, err
	}

	return k.unwrap(ctx, key)
}

func (k *keeperKeyUseCase) unwrap(
	ctx context.Context,
	key *keysDomain.DomainKey,
) ([]byte, error) {
	secret, err := k.keeper.Decrypt(ctx, key.WrappedKey)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to unwrap domain key")
	}
	return secret, nil
}

// CreateDomainKey provisions the first secret for a domain.
func (k *keeperKeyUseCase) CreateDomainKey(
	ctx context.Context,
	domain fieldcryptDomain.RecordDomain,
) (uint, error) {
	if !fieldcryptDomain.ValidDomain(domain) {
		return 0, apperrors.Wrapf(apperrors.ErrInvalidInput, "unknown domain %q", domain)
	}

	wrapped, err := k.wrapFreshSecret(ctx)
	if err != nil {
		return 0, err
	}

	var version uint
	err = k.txManager.WithTx(ctx, func(ctx context.Context) error {
		_, err := k.domainKeyRepo.GetActive(ctx, domain)
		if err == nil {
			return keysDomain.ErrKeyExists
		}
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		maxVersion, err := k.domainKeyRepo.MaxVersion(ctx, domain)
		if err != nil {
			return err
		}
		version = maxVersion + 1

		return k.domainKeyRepo.Create(ctx, &keysDomain.DomainKey{
			ID:         uuid.Must(uuid.NewV7()),
			Domain:     domain,
			Version:    version,
			WrappedKey: wrapped,
			IsActive:   true,
			CreatedAt:  time.Now().UTC(),
		})
	})
	if err != nil {
		return 0, err
	}

	return version, nil
}

// RotateDomainKey retires the active secret and activates a fresh version.
// Existing ciphertext remains readable through DomainKeyVersion until it is
// re-encrypted.
func (k *keeperKeyUseCase) RotateDomainKey(
	ctx context.Context,
	domain fieldcryptDomain.RecordDomain,
) (uint, error) {
	wrapped, err := k.wrapFreshSecret(ctx)
	if err != nil {
		return 0, err
	}

	var version uint
	err = k.txManager.WithTx(ctx, func(ctx context.Context) error {
		if _, err := k.domainKeyRepo.GetActive(ctx, domain); err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				return apperrors.Wrapf(keysDomain.ErrNoActiveKey, "domain %s", domain)
			}
			return err
		}

		if err := k.domainKeyRepo.Deactivate(ctx, domain); err != nil {
			return err
		}

		maxVersion, err := k.domainKeyRepo.MaxVersion(ctx, domain)
		if err != nil {
			return err
		}
		version = maxVersion + 1

		return k.domainKeyRepo.Create(ctx, &keysDomain.DomainKey{
			ID:         uuid.Must(uuid.NewV7()),
			Domain:     domain,
			Version:    version,
			WrappedKey: wrapped,
			IsActive:   true,
			CreatedAt:  time.Now().UTC(),
		})
	})
	if err != nil {
		return 0, err
	}

	return version, nil
}

// wrapFreshSecret generates new secret material and wraps it with the keeper.
// The plaintext secret is zeroed before returning.
func (k *keeperKeyUseCase) wrapFreshSecret(ctx context.Context) ([]byte, error) {
	secret := make([]byte, cryptoDomain.MinSecretSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate domain secret")
	}
	defer cryptoDomain.Zero(secret)

	wrapped, err := k.keeper.Encrypt(ctx, secret)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to wrap domain secret")
	}
	return wrapped, nil
}

// NewKeeperKeyUseCase creates a KeyUseCase backed by the domain_keys table.
func NewKeeperKeyUseCase(
	domainKeyRepo DomainKeyRepository,
	keeper keysDomain.Keeper,
	txManager database.TxManager,
) KeyUseCase {
	return &keeperKeyUseCase{
		domainKeyRepo: domainKeyRepo,
		keeper:        keeper,
		txManager:     txManager,
	}
}
