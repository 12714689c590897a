package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	keysUseCase "github.com/innwise/fieldvault/internal/keys/usecase"
)

// RunCreateDomainKey provisions the first keeper-wrapped key for a record
// domain. Fails with ErrKeyExists when the domain already has an active key;
// use rotate-domain-key to replace one.
//
// Requirements: Database must be migrated and KEEPER_URI configured.
func RunCreateDomainKey(
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

	logger.Info("creating domain key", slog.String("domain", domainStr))

	version, err := keyUseCase.CreateDomainKey(ctx, domain)
	if err != nil {
		return fmt.Errorf("failed to create domain key: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Domain key created\n")
	_, _ = fmt.Fprintf(writer, "  Domain:  %s\n", domain)
	_, _ = fmt.Fprintf(writer, "  Version: %d\n", version)

	logger.Info("domain key created",
		slog.String("domain", domainStr),
		slog.Uint64("version", uint64(version)),
	)

	return nil
}
