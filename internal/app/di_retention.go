package app

import (
	"fmt"

	retentionHTTP "github.com/innwise/fieldvault/internal/retention/http"
	retentionRepository "github.com/innwise/fieldvault/internal/retention/repository"
	retentionScheduler "github.com/innwise/fieldvault/internal/retention/scheduler"
	retentionUseCase "github.com/innwise/fieldvault/internal/retention/usecase"
)

// DeletionRepository returns the deletion record repository based on database driver.
func (c *Container) DeletionRepository() (retentionUseCase.DeletionRepository, error) {
	var err error
	c.deletionRepositoryInit.Do(func() {
		c.deletionRepository, err = c.initDeletionRepository()
		if err != nil {
			c.initErrors["deletionRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["deletionRepository"]; exists {
		return nil, storedErr
	}
	return c.deletionRepository, nil
}

// LifecycleUseCase returns the deletion lifecycle use case.
func (c *Container) LifecycleUseCase() (retentionUseCase.LifecycleUseCase, error) {
	var err error
	c.lifecycleUseCaseInit.Do(func() {
		c.lifecycleUseCase, err = c.initLifecycleUseCase()
		if err != nil {
			c.initErrors["lifecycleUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["lifecycleUseCase"]; exists {
		return nil, storedErr
	}
	return c.lifecycleUseCase, nil
}

// SweeperUseCase returns the retention sweeper use case.
func (c *Container) SweeperUseCase() (retentionUseCase.SweeperUseCase, error) {
	var err error
	c.sweeperUseCaseInit.Do(func() {
		c.sweeperUseCase, err = c.initSweeperUseCase()
		if err != nil {
			c.initErrors["sweeperUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sweeperUseCase"]; exists {
		return nil, storedErr
	}
	return c.sweeperUseCase, nil
}

// Scheduler returns the retention sweep scheduler, or nil when the periodic
// sweep is disabled.
func (c *Container) Scheduler() (*retentionScheduler.Scheduler, error) {
	var err error
	c.schedulerInit.Do(func() {
		c.scheduler, err = c.initScheduler()
		if err != nil {
			c.initErrors["scheduler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["scheduler"]; exists {
		return nil, storedErr
	}
	return c.scheduler, nil
}

// LifecycleHandler returns the HTTP handler for deletion lifecycle operations.
func (c *Container) LifecycleHandler() (*retentionHTTP.LifecycleHandler, error) {
	var err error
	c.lifecycleHandlerInit.Do(func() {
		c.lifecycleHandler, err = c.initLifecycleHandler()
		if err != nil {
			c.initErrors["lifecycleHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["lifecycleHandler"]; exists {
		return nil, storedErr
	}
	return c.lifecycleHandler, nil
}

// initDeletionRepository creates the deletion repository based on the database driver.
func (c *Container) initDeletionRepository() (retentionUseCase.DeletionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for deletion repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return retentionRepository.NewPostgreSQLDeletionRepository(db), nil
	case "mysql":
		return retentionRepository.NewMySQLDeletionRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initLifecycleUseCase creates the lifecycle use case with all its dependencies.
func (c *Container) initLifecycleUseCase() (retentionUseCase.LifecycleUseCase, error) {
	deletionRepository, err := c.DeletionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get deletion repository for lifecycle use case: %w", err)
	}

	documentStore, err := c.RetentionDocumentStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get document store for lifecycle use case: %w", err)
	}

	auditUC, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for lifecycle use case: %w", err)
	}

	baseUseCase := retentionUseCase.NewLifecycleUseCase(
		deletionRepository,
		documentStore,
		auditUC,
		c.config.DeletionGracePeriod,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for lifecycle use case: %w", err)
		}
		return retentionUseCase.NewLifecycleUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initSweeperUseCase creates the sweeper use case with all its dependencies.
func (c *Container) initSweeperUseCase() (retentionUseCase.SweeperUseCase, error) {
	documentStore, err := c.RetentionDocumentStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get document store for sweeper use case: %w", err)
	}

	deletionRepository, err := c.DeletionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get deletion repository for sweeper use case: %w", err)
	}

	auditUC, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for sweeper use case: %w", err)
	}

	baseUseCase := retentionUseCase.NewSweeperUseCase(
		documentStore,
		deletionRepository,
		auditUC,
		0,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for sweeper use case: %w", err)
		}
		return retentionUseCase.NewSweeperUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initScheduler creates the retention scheduler when the periodic sweep is enabled.
func (c *Container) initScheduler() (*retentionScheduler.Scheduler, error) {
	if !c.config.RetentionSweepEnabled {
		return nil, nil
	}

	sweeper, err := c.SweeperUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get sweeper use case for scheduler: %w", err)
	}

	return retentionScheduler.NewScheduler(sweeper, c.config.RetentionSweepInterval, c.Logger()), nil
}

// initLifecycleHandler creates the lifecycle HTTP handler with all its dependencies.
func (c *Container) initLifecycleHandler() (*retentionHTTP.LifecycleHandler, error) {
	lifecycleUC, err := c.LifecycleUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get lifecycle use case for lifecycle handler: %w", err)
	}

	return retentionHTTP.NewLifecycleHandler(lifecycleUC, c.Logger()), nil
}
