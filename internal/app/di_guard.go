package app

import (
	"fmt"

	guardUseCase "github.com/innwise/fieldvault/internal/guard/usecase"
)

// GuardUseCase returns the authorization guard use case.
func (c *Container) GuardUseCase() (guardUseCase.GuardUseCase, error) {
	var err error
	c.guardUseCaseInit.Do(func() {
		c.guardUseCase, err = c.initGuardUseCase()
		if err != nil {
			c.initErrors["guardUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["guardUseCase"]; exists {
		return nil, storedErr
	}
	return c.guardUseCase, nil
}

// initGuardUseCase creates the guard use case with all its dependencies.
func (c *Container) initGuardUseCase() (guardUseCase.GuardUseCase, error) {
	directory, err := c.DirectoryUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get directory use case for guard use case: %w", err)
	}

	keyProvider, err := c.KeyProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get key provider for guard use case: %w", err)
	}

	auditUC, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for guard use case: %w", err)
	}

	return guardUseCase.NewGuardUseCase(directory, keyProvider, auditUC, c.Logger()), nil
}
