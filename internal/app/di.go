// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	auditHTTP "github.com/innwise/fieldvault/internal/audit/http"
	auditService "github.com/innwise/fieldvault/internal/audit/service"
	auditUseCase "github.com/innwise/fieldvault/internal/audit/usecase"
	"github.com/innwise/fieldvault/internal/config"
	"github.com/innwise/fieldvault/internal/database"
	fieldcryptService "github.com/innwise/fieldvault/internal/fieldcrypt/service"
	guardUseCase "github.com/innwise/fieldvault/internal/guard/usecase"
	"github.com/innwise/fieldvault/internal/http"
	identityService "github.com/innwise/fieldvault/internal/identity/service"
	identityUseCase "github.com/innwise/fieldvault/internal/identity/usecase"
	keysDomain "github.com/innwise/fieldvault/internal/keys/domain"
	keysService "github.com/innwise/fieldvault/internal/keys/service"
	keysUseCase "github.com/innwise/fieldvault/internal/keys/usecase"
	"github.com/innwise/fieldvault/internal/metrics"
	recordsHTTP "github.com/innwise/fieldvault/internal/records/http"
	recordsUseCase "github.com/innwise/fieldvault/internal/records/usecase"
	retentionHTTP "github.com/innwise/fieldvault/internal/retention/http"
	retentionScheduler "github.com/innwise/fieldvault/internal/retention/scheduler"
	retentionUseCase "github.com/innwise/fieldvault/internal/retention/usecase"
	tenantUseCase "github.com/innwise/fieldvault/internal/tenant/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger
	db     *sql.DB

	// Managers
	txManager database.TxManager

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Identity
	secretService            identityService.SecretService
	tokenVerifier            identityService.TokenVerifier
	serviceAccountRepository identityUseCase.ServiceAccountRepository
	identityUseCase          identityUseCase.IdentityUseCase

	// Tenant directory
	membershipRepository tenantUseCase.MembershipRepository
	directoryUseCase     tenantUseCase.DirectoryUseCase

	// Domain keys
	keeperService       keysService.KeeperService
	keeper              keysDomain.Keeper
	keySet              *keysDomain.KeySet
	domainKeyRepository keysUseCase.DomainKeyRepository
	keyUseCase          keysUseCase.KeyUseCase
	keyProvider         keysUseCase.Provider

	// Audit trail
	auditSigner     auditService.Signer
	entryRepository auditUseCase.EntryRepository
	auditUseCase    auditUseCase.AuditUseCase
	entryHandler    *auditHTTP.EntryHandler

	// Guard
	guardUseCase guardUseCase.GuardUseCase

	// Records
	documentRepository documentRepository
	envelopeSealer     fieldcryptService.EnvelopeSealer
	recordUseCase      recordsUseCase.RecordUseCase
	recordHandler      *recordsHTTP.RecordHandler

	// Retention
	deletionRepository retentionUseCase.DeletionRepository
	lifecycleUseCase   retentionUseCase.LifecycleUseCase
	sweeperUseCase     retentionUseCase.SweeperUseCase
	scheduler          *retentionScheduler.Scheduler
	lifecycleHandler   *retentionHTTP.LifecycleHandler

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                           sync.Mutex
	loggerInit                   sync.Once
	dbInit                       sync.Once
	txManagerInit                sync.Once
	metricsProviderInit          sync.Once
	businessMetricsInit          sync.Once
	secretServiceInit            sync.Once
	tokenVerifierInit            sync.Once
	serviceAccountRepositoryInit sync.Once
	identityUseCaseInit          sync.Once
	membershipRepositoryInit     sync.Once
	directoryUseCaseInit         sync.Once
	keeperServiceInit            sync.Once
	keeperInit                   sync.Once
	domainKeyRepositoryInit      sync.Once
	keyUseCaseInit               sync.Once
	keyProviderInit              sync.Once
	auditSignerInit              sync.Once
	entryRepositoryInit          sync.Once
	auditUseCaseInit             sync.Once
	entryHandlerInit             sync.Once
	guardUseCaseInit             sync.Once
	documentRepositoryInit       sync.Once
	envelopeSealerInit           sync.Once
	recordUseCaseInit            sync.Once
	recordHandlerInit            sync.Once
	deletionRepositoryInit       sync.Once
	lifecycleUseCaseInit         sync.Once
	sweeperUseCaseInit           sync.Once
	schedulerInit                sync.Once
	lifecycleHandlerInit         sync.Once
	httpServerInit               sync.Once
	metricsServerInit            sync.Once
	initErrors                   map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the OpenTelemetry metrics provider, or nil when
// metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. A no-op recorder is
// returned when metrics are disabled, so decorated use cases never need to
// check the configuration themselves.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// HTTPServer returns the API server with its full route tree wired.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the standalone metrics server, or nil when metrics
// are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Stop the retention scheduler if running
	if c.scheduler != nil {
		c.scheduler.Stop()
	}

	// Flush metrics if initialized
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Close the keeper connection if opened
	if c.keeper != nil {
		if err := c.keeper.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("keeper close: %w", err))
		}
	}

	// Zero environment-loaded domain secrets if loaded
	if c.keySet != nil {
		c.keySet.Close()
	}

	// Close database connection if initialized
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	// Return combined errors if any occurred
	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initMetricsProvider creates the metrics provider when metrics are enabled.
func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}

	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

// initBusinessMetrics creates the business metrics recorder.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}

	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return businessMetrics, nil
}

// initHTTPServer creates the API server and wires the full middleware chain
// and route tree.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	identityUC, err := c.IdentityUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity use case for http server: %w", err)
	}

	guardUC, err := c.GuardUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get guard use case for http server: %w", err)
	}

	auditUC, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for http server: %w", err)
	}

	recordHandler, err := c.RecordHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get record handler for http server: %w", err)
	}

	entryHandler, err := c.EntryHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get entry handler for http server: %w", err)
	}

	lifecycleHandler, err := c.LifecycleHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get lifecycle handler for http server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)

	routerConfig := http.RouterConfig{
		IdentityUseCase:  identityUC,
		GuardUseCase:     guardUC,
		AuditUseCase:     auditUC,
		RecordHandler:    recordHandler,
		EntryHandler:     entryHandler,
		LifecycleHandler: lifecycleHandler,
		CORSEnabled:      c.config.CORSEnabled,
		CORSAllowOrigins: c.config.CORSAllowOrigins,
		MetricsProvider:  metricsProvider,
		MetricsNamespace: c.config.MetricsNamespace,
	}
	if c.config.RateLimitEnabled {
		routerConfig.RateLimitRPS = c.config.RateLimitRequestsPerSec
		routerConfig.RateLimitBurst = c.config.RateLimitBurst
	}

	if err := server.SetupRouter(routerConfig); err != nil {
		return nil, fmt.Errorf("failed to setup router: %w", err)
	}

	return server, nil
}

// initMetricsServer creates the standalone metrics server when metrics are
// enabled.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}

	return http.NewMetricsServer(
		c.config.ServerHost,
		c.config.MetricsPort,
		c.Logger(),
		provider,
	), nil
}
