package app

import (
	"fmt"

	tenantRepository "github.com/innwise/fieldvault/internal/tenant/repository"
	tenantUseCase "github.com/innwise/fieldvault/internal/tenant/usecase"
)

// MembershipRepository returns the tenant membership repository based on database driver.
func (c *Container) MembershipRepository() (tenantUseCase.MembershipRepository, error) {
	var err error
	c.membershipRepositoryInit.Do(func() {
		c.membershipRepository, err = c.initMembershipRepository()
		if err != nil {
			c.initErrors["membershipRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["membershipRepository"]; exists {
		return nil, storedErr
	}
	return c.membershipRepository, nil
}

// DirectoryUseCase returns the tenant directory use case.
func (c *Container) DirectoryUseCase() (tenantUseCase.DirectoryUseCase, error) {
	var err error
	c.directoryUseCaseInit.Do(func() {
		c.directoryUseCase, err = c.initDirectoryUseCase()
		if err != nil {
			c.initErrors["directoryUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["directoryUseCase"]; exists {
		return nil, storedErr
	}
	return c.directoryUseCase, nil
}

// initMembershipRepository creates the membership repository based on the database driver.
func (c *Container) initMembershipRepository() (tenantUseCase.MembershipRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for membership repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return tenantRepository.NewPostgreSQLMembershipRepository(db), nil
	case "mysql":
		return tenantRepository.NewMySQLMembershipRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initDirectoryUseCase creates the directory use case with all its dependencies.
func (c *Container) initDirectoryUseCase() (tenantUseCase.DirectoryUseCase, error) {
	membershipRepository, err := c.MembershipRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get membership repository for directory use case: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for directory use case: %w", err)
	}

	return tenantUseCase.NewDirectoryUseCase(membershipRepository, txManager), nil
}
