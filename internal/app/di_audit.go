package app

import (
	"fmt"

	auditHTTP "github.com/innwise/fieldvault/internal/audit/http"
	auditRepository "github.com/innwise/fieldvault/internal/audit/repository"
	auditService "github.com/innwise/fieldvault/internal/audit/service"
	auditUseCase "github.com/innwise/fieldvault/internal/audit/usecase"
)

// AuditSigner returns the audit entry signer.
func (c *Container) AuditSigner() auditService.Signer {
	c.auditSignerInit.Do(func() {
		c.auditSigner = c.initAuditSigner()
	})
	return c.auditSigner
}

// EntryRepository returns the audit entry repository based on database driver.
func (c *Container) EntryRepository() (auditUseCase.EntryRepository, error) {
	var err error
	c.entryRepositoryInit.Do(func() {
		c.entryRepository, err = c.initEntryRepository()
		if err != nil {
			c.initErrors["entryRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["entryRepository"]; exists {
		return nil, storedErr
	}
	return c.entryRepository, nil
}

// AuditUseCase returns the audit use case.
func (c *Container) AuditUseCase() (auditUseCase.AuditUseCase, error) {
	var err error
	c.auditUseCaseInit.Do(func() {
		c.auditUseCase, err = c.initAuditUseCase()
		if err != nil {
			c.initErrors["auditUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditUseCase, nil
}

// EntryHandler returns the HTTP handler for audit trail queries.
func (c *Container) EntryHandler() (*auditHTTP.EntryHandler, error) {
	var err error
	c.entryHandlerInit.Do(func() {
		c.entryHandler, err = c.initEntryHandler()
		if err != nil {
			c.initErrors["entryHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["entryHandler"]; exists {
		return nil, storedErr
	}
	return c.entryHandler, nil
}

// initAuditSigner creates the audit entry signer.
func (c *Container) initAuditSigner() auditService.Signer {
	return auditService.NewSigner()
}

// initEntryRepository creates the audit entry repository based on the database driver.
func (c *Container) initEntryRepository() (auditUseCase.EntryRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for entry repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return auditRepository.NewPostgreSQLEntryRepository(db), nil
	case "mysql":
		return auditRepository.NewMySQLEntryRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuditUseCase creates the audit use case with all its dependencies. An
// empty AUDIT_SIGNING_SECRET disables entry signing.
func (c *Container) initAuditUseCase() (auditUseCase.AuditUseCase, error) {
	entryRepository, err := c.EntryRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get entry repository for audit use case: %w", err)
	}

	return auditUseCase.NewAuditUseCase(
		entryRepository,
		c.AuditSigner(),
		[]byte(c.config.AuditSigningSecret),
	), nil
}

// initEntryHandler creates the audit entry HTTP handler with all its dependencies.
func (c *Container) initEntryHandler() (*auditHTTP.EntryHandler, error) {
	auditUC, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for entry handler: %w", err)
	}

	return auditHTTP.NewEntryHandler(auditUC, c.Logger()), nil
}
