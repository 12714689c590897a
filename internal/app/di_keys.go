package app

import (
	"context"
	"fmt"

	apperrors "github.com/innwise/fieldvault/internal/errors"
	keysDomain "github.com/innwise/fieldvault/internal/keys/domain"
	keysRepository "github.com/innwise/fieldvault/internal/keys/repository"
	keysService "github.com/innwise/fieldvault/internal/keys/service"
	keysUseCase "github.com/innwise/fieldvault/internal/keys/usecase"
)

// KeeperService returns the keeper service for opening secrets keepers.
func (c *Container) KeeperService() keysService.KeeperService {
	c.keeperServiceInit.Do(func() {
		c.keeperService = c.initKeeperService()
	})
	return c.keeperService
}

// Keeper returns the opened secrets keeper for the configured KEEPER_URI.
func (c *Container) Keeper() (keysDomain.Keeper, error) {
	var err error
	c.keeperInit.Do(func() {
		c.keeper, err = c.initKeeper()
		if err != nil {
			c.initErrors["keeper"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keeper"]; exists {
		return nil, storedErr
	}
	return c.keeper, nil
}

// DomainKeyRepository returns the domain key repository based on database driver.
func (c *Container) DomainKeyRepository() (keysUseCase.DomainKeyRepository, error) {
	var err error
	c.domainKeyRepositoryInit.Do(func() {
		c.domainKeyRepository, err = c.initDomainKeyRepository()
		if err != nil {
			c.initErrors["domainKeyRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["domainKeyRepository"]; exists {
		return nil, storedErr
	}
	return c.domainKeyRepository, nil
}

// KeyUseCase returns the keeper-backed key use case. Key provisioning and
// rotation always go through the keeper, so this errors when KEEPER_URI
// is not configured.
func (c *Container) KeyUseCase() (keysUseCase.KeyUseCase, error) {
	var err error
	c.keyUseCaseInit.Do(func() {
		c.keyUseCase, err = c.initKeyUseCase()
		if err != nil {
			c.initErrors["keyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyUseCase"]; exists {
		return nil, storedErr
	}
	return c.keyUseCase, nil
}

// KeyProvider returns the request-time domain key provider. With KEEPER_URI
// configured it resolves keeper-wrapped keys from the database; otherwise it
// serves the static DOMAIN_KEYS set, which suits development and tests.
func (c *Container) KeyProvider() (keysUseCase.Provider, error) {
	var err error
	c.keyProviderInit.Do(func() {
		c.keyProvider, err = c.initKeyProvider()
		if err != nil {
			c.initErrors["keyProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyProvider"]; exists {
		return nil, storedErr
	}
	return c.keyProvider, nil
}

// initKeeperService creates the keeper service.
func (c *Container) initKeeperService() keysService.KeeperService {
	return keysService.NewKeeperService()
}

// initKeeper opens the secrets keeper for the configured URI.
func (c *Container) initKeeper() (keysDomain.Keeper, error) {
	if c.config.KeeperURI == "" {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "KEEPER_URI not configured")
	}

	keeper, err := c.KeeperService().OpenKeeper(context.Background(), c.config.KeeperURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open keeper: %w", err)
	}
	return keeper, nil
}

// initDomainKeyRepository creates the domain key repository based on the database driver.
func (c *Container) initDomainKeyRepository() (keysUseCase.DomainKeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for domain key repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return keysRepository.NewPostgreSQLDomainKeyRepository(db), nil
	case "mysql":
		return keysRepository.NewMySQLDomainKeyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initKeyUseCase creates the keeper-backed key use case with all its dependencies.
func (c *Container) initKeyUseCase() (keysUseCase.KeyUseCase, error) {
	domainKeyRepository, err := c.DomainKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get domain key repository for key use case: %w", err)
	}

	keeper, err := c.Keeper()
	if err != nil {
		return nil, fmt.Errorf("failed to get keeper for key use case: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for key use case: %w", err)
	}

	return keysUseCase.NewKeeperKeyUseCase(domainKeyRepository, keeper, txManager), nil
}

// initKeyProvider selects the domain key source from the configuration.
func (c *Container) initKeyProvider() (keysUseCase.Provider, error) {
	if c.config.KeeperURI != "" {
		keyUseCase, err := c.KeyUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get key use case for key provider: %w", err)
		}
		return keyUseCase, nil
	}

	if c.config.DomainKeys == "" {
		return nil, apperrors.Wrap(
			apperrors.ErrConfiguration,
			"no domain key source: set KEEPER_URI or DOMAIN_KEYS",
		)
	}

	keySet, err := keysDomain.ParseKeySet(c.config.DomainKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DOMAIN_KEYS: %w", err)
	}
	c.keySet = keySet

	return keysUseCase.NewEnvKeyProvider(keySet), nil
}
