package app

import (
	"fmt"

	identityDomain "github.com/innwise/fieldvault/internal/identity/domain"
	identityRepository "github.com/innwise/fieldvault/internal/identity/repository"
	identityService "github.com/innwise/fieldvault/internal/identity/service"
	identityUseCase "github.com/innwise/fieldvault/internal/identity/usecase"
)

// SecretService returns the secret service for service-account credentials.
func (c *Container) SecretService() identityService.SecretService {
	c.secretServiceInit.Do(func() {
		c.secretService = c.initSecretService()
	})
	return c.secretService
}

// TokenVerifier returns the verifier for platform-issued JWTs.
func (c *Container) TokenVerifier() identityService.TokenVerifier {
	c.tokenVerifierInit.Do(func() {
		c.tokenVerifier = c.initTokenVerifier()
	})
	return c.tokenVerifier
}

// ServiceAccountRepository returns the service account repository based on database driver.
func (c *Container) ServiceAccountRepository() (identityUseCase.ServiceAccountRepository, error) {
	var err error
	c.serviceAccountRepositoryInit.Do(func() {
		c.serviceAccountRepository, err = c.initServiceAccountRepository()
		if err != nil {
			c.initErrors["serviceAccountRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["serviceAccountRepository"]; exists {
		return nil, storedErr
	}
	return c.serviceAccountRepository, nil
}

// IdentityUseCase returns the identity use case.
func (c *Container) IdentityUseCase() (identityUseCase.IdentityUseCase, error) {
	var err error
	c.identityUseCaseInit.Do(func() {
		c.identityUseCase, err = c.initIdentityUseCase()
		if err != nil {
			c.initErrors["identityUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["identityUseCase"]; exists {
		return nil, storedErr
	}
	return c.identityUseCase, nil
}

// initSecretService creates the secret service for service-account tokens.
func (c *Container) initSecretService() identityService.SecretService {
	return identityService.NewSecretService()
}

// initTokenVerifier creates the JWT verifier from the configured signing key,
// issuer and audience.
func (c *Container) initTokenVerifier() identityService.TokenVerifier {
	return identityService.NewJWTVerifier(
		[]byte(c.config.JWTSigningKey),
		c.config.JWTIssuer,
		c.config.JWTAudience,
	)
}

// initServiceAccountRepository creates the service account repository based on the database driver.
func (c *Container) initServiceAccountRepository() (identityUseCase.ServiceAccountRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for service account repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return identityRepository.NewPostgreSQLServiceAccountRepository(db), nil
	case "mysql":
		return identityRepository.NewMySQLServiceAccountRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initIdentityUseCase creates the identity use case with all its dependencies.
func (c *Container) initIdentityUseCase() (identityUseCase.IdentityUseCase, error) {
	serviceAccountRepository, err := c.ServiceAccountRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get service account repository for identity use case: %w", err)
	}

	return identityUseCase.NewIdentityUseCase(
		serviceAccountRepository,
		c.TokenVerifier(),
		c.SecretService(),
		identityDomain.DefaultStepUpPredicate(c.config.StepUpClaim),
	), nil
}
