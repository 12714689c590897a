// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/innwise/fieldvault/internal/app"
	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
)

// operatorSubject is the subject id stamped on audit entries for membership
// changes made through the CLI.
const operatorSubject = "cli-operator"

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *slog.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			slog.Any("source_error", sourceError),
			slog.Any("database_error", databaseError),
		)
	}
}

// parseDomain converts a domain string to fieldcryptDomain.RecordDomain.
// Returns an error if no registered field policy references the domain.
func parseDomain(domainStr string) (fieldcryptDomain.RecordDomain, error) {
	domain := fieldcryptDomain.RecordDomain(domainStr)
	if !fieldcryptDomain.ValidDomain(domain) {
		return "", fmt.Errorf(
			"invalid domain: %s (valid options: hr, banking, payroll, personal, finance)",
			domainStr,
		)
	}
	return domain, nil
}
