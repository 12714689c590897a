package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	keysUseCase "github.com/innwise/fieldvault/internal/keys/usecase"
)

// RunRotateDomainKey retires a domain's active key and activates a fresh
// version. Records sealed under the retired version stay readable through
// versioned lookup; run reencrypt-domain afterwards to move them to the new
// key.
//
// Requirements: Database must be migrated and KEEPER_URI configured.
func RunRotateDomainKey(
	ctx context.Context,
	keyUseCase keysUseCase.KeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	domainStr string,
) error {
	domain, err := parseDomain(domainStr)
	if err != nil {
		return err
	}

	logger.Info("rotating domain key", slog.String("domain", domainStr))

	version, err := keyUseCase.RotateDomainKey(ctx, domain)
	if err != nil {
		return fmt.Errorf("failed to rotate domain key: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Domain key rotated\n")
	_, _ = fmt.Fprintf(writer, "  Domain:      %s\n", domain)
	_, _ = fmt.Fprintf(writer, "  New Version: %d\n", version)
	_, _ = fmt.Fprintf(writer, "\nRun 'reencrypt-domain --domain %s --old-version %d' to re-seal existing records\n", domain, version-1)

	logger.Info("domain key rotated",
		slog.String("domain", domainStr),
		slog.Uint64("new_version", uint64(version)),
	)

	return nil
}
