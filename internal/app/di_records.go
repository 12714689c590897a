package app

import (
	"fmt"

	cryptoDomain "github.com/innwise/fieldvault/internal/crypto/domain"
	cryptoService "github.com/innwise/fieldvault/internal/crypto/service"
	fieldcryptService "github.com/innwise/fieldvault/internal/fieldcrypt/service"
	recordsHTTP "github.com/innwise/fieldvault/internal/records/http"
	recordsUseCase "github.com/innwise/fieldvault/internal/records/usecase"
	retentionUseCase "github.com/innwise/fieldvault/internal/retention/usecase"
	storeRepository "github.com/innwise/fieldvault/internal/store/repository"
)

// documentRepository is the full method set of the driver-selected document
// repository. One instance serves both the records API and the retention
// sweep; Get, Put and Delete are shared between the two views.
type documentRepository interface {
	recordsUseCase.DocumentRepository
	retentionUseCase.DocumentStore
}

// DocumentRepository returns the records view of the document repository.
func (c *Container) DocumentRepository() (recordsUseCase.DocumentRepository, error) {
	repo, err := c.documentRepo()
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// RetentionDocumentStore returns the retention view of the document repository.
func (c *Container) RetentionDocumentStore() (retentionUseCase.DocumentStore, error) {
	repo, err := c.documentRepo()
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// documentRepo initializes the shared document repository once.
func (c *Container) documentRepo() (documentRepository, error) {
	var err error
	c.documentRepositoryInit.Do(func() {
		c.documentRepository, err = c.initDocumentRepository()
		if err != nil {
			c.initErrors["documentRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["documentRepository"]; exists {
		return nil, storedErr
	}
	return c.documentRepository, nil
}

// EnvelopeSealer returns the envelope sealer for the configured algorithm.
func (c *Container) EnvelopeSealer() (fieldcryptService.EnvelopeSealer, error) {
	var err error
	c.envelopeSealerInit.Do(func() {
		c.envelopeSealer, err = c.initEnvelopeSealer()
		if err != nil {
			c.initErrors["envelopeSealer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["envelopeSealer"]; exists {
		return nil, storedErr
	}
	return c.envelopeSealer, nil
}

// RecordUseCase returns the records use case.
func (c *Container) RecordUseCase() (recordsUseCase.RecordUseCase, error) {
	var err error
	c.recordUseCaseInit.Do(func() {
		c.recordUseCase, err = c.initRecordUseCase()
		if err != nil {
			c.initErrors["recordUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["recordUseCase"]; exists {
		return nil, storedErr
	}
	return c.recordUseCase, nil
}

// RecordHandler returns the HTTP handler for the records API.
func (c *Container) RecordHandler() (*recordsHTTP.RecordHandler, error) {
	var err error
	c.recordHandlerInit.Do(func() {
		c.recordHandler, err = c.initRecordHandler()
		if err != nil {
			c.initErrors["recordHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["recordHandler"]; exists {
		return nil, storedErr
	}
	return c.recordHandler, nil
}

// initDocumentRepository creates the document repository based on the database driver.
func (c *Container) initDocumentRepository() (documentRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for document repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return storeRepository.NewPostgreSQLDocumentRepository(db), nil
	case "mysql":
		return storeRepository.NewMySQLDocumentRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initEnvelopeSealer creates the envelope service for the configured algorithm.
func (c *Container) initEnvelopeSealer() (fieldcryptService.EnvelopeSealer, error) {
	sealer, err := cryptoService.NewEnvelopeService(
		cryptoDomain.Algorithm(c.config.FieldEncryptionAlgorithm),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create envelope service: %w", err)
	}
	return sealer, nil
}

// initRecordUseCase creates the records use case with all its dependencies.
func (c *Container) initRecordUseCase() (recordsUseCase.RecordUseCase, error) {
	documentRepository, err := c.DocumentRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get document repository for record use case: %w", err)
	}

	sealer, err := c.EnvelopeSealer()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope sealer for record use case: %w", err)
	}

	baseUseCase, err := recordsUseCase.NewRecordUseCase(
		documentRepository,
		sealer,
		fieldcryptService.FailureMode(c.config.FieldFailureMode),
		c.Logger(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create record use case: %w", err)
	}

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for record use case: %w", err)
		}
		return recordsUseCase.NewRecordUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initRecordHandler creates the record HTTP handler with all its dependencies.
func (c *Container) initRecordHandler() (*recordsHTTP.RecordHandler, error) {
	recordUC, err := c.RecordUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get record use case for record handler: %w", err)
	}

	return recordsHTTP.NewRecordHandler(recordUC, c.Logger()), nil
}
