package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	cryptoDomain "github.com/innwise/fieldvault/internal/crypto/domain"
	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
	keysUseCase "github.com/innwise/fieldvault/internal/keys/usecase"
	recordsUseCase "github.com/innwise/fieldvault/internal/records/usecase"
)

// RunReencryptDomain walks every collection in a domain and re-seals records
// from a retired key version to the active one in batches. The cutoff is
// fixed before the walk starts, so records written under the new key during
// the run are never touched. Fields that will not open under the retired
// version are left in place and counted.
//
// Requirements: Database must be migrated, KEEPER_URI configured, and the
// domain rotated so an active key newer than old-version exists.
func RunReencryptDomain(
	ctx context.Context,
	keyUseCase keysUseCase.KeyUseCase,
	recordUseCase recordsUseCase.RecordUseCase,
	logger *slog.Logger,
	writer io.Writer,
	domainStr string,
	oldVersion uint,
	batchSize int,
) error {
	domain, err := parseDomain(domainStr)
	if err != nil {
		return err
	}

	if oldVersion == 0 {
		return fmt.Errorf("old-version must be greater than 0")
	}

	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}

	logger.Info("starting domain re-encryption",
		slog.String("domain", domainStr),
		slog.Uint64("old_version", uint64(oldVersion)),
		slog.Int("batch_size", batchSize),
	)

	// Unwrap the retired version records are still sealed under
	decryptSecret, err := keyUseCase.DomainKeyVersion(ctx, domain, oldVersion)
	if err != nil {
		return fmt.Errorf("failed to unwrap key version %d: %w", oldVersion, err)
	}
	defer cryptoDomain.Zero(decryptSecret)

	// Resolve the active key everything is re-sealed under
	encryptSecret, err := keyUseCase.DomainKey(ctx, domain)
	if err != nil {
		return fmt.Errorf("failed to resolve active domain key: %w", err)
	}
	defer cryptoDomain.Zero(encryptSecret)

	// Fix the cutoff once so records written during the walk are skipped
	cutoff := time.Now().UTC()

	totalDocuments := 0
	totalSealed := 0
	totalFailed := 0

	for _, policy := range fieldcryptDomain.PoliciesForDomain(domain) {
		for {
			report, err := recordUseCase.ReencryptBatch(
				ctx,
				policy.Collection,
				decryptSecret,
				encryptSecret,
				cutoff,
				batchSize,
			)
			if err != nil {
				return fmt.Errorf("failed to re-encrypt collection %s: %w", policy.Collection, err)
			}

			if report.Documents == 0 {
				break
			}

			totalDocuments += report.Documents
			totalSealed += report.Sealed
			totalFailed += report.Failed
			logger.Info("re-encrypted batch of records",
				slog.String("collection", policy.Collection),
				slog.Int("documents_in_batch", report.Documents),
				slog.Int("total_documents", totalDocuments),
			)
		}
	}

	_, _ = fmt.Fprintf(writer, "Domain re-encryption completed\n")
	_, _ = fmt.Fprintf(writer, "  Domain:           %s\n", domain)
	_, _ = fmt.Fprintf(writer, "  Documents:        %d\n", totalDocuments)
	_, _ = fmt.Fprintf(writer, "  Fields Re-sealed: %d\n", totalSealed)
	_, _ = fmt.Fprintf(writer, "  Fields Skipped:   %d\n", totalFailed)

	if totalFailed > 0 {
		_, _ = fmt.Fprintf(writer, "\nWARNING: %d field(s) did not open under version %d and were left untouched\n", totalFailed, oldVersion)
	}

	logger.Info("domain re-encryption completed",
		slog.String("domain", domainStr),
		slog.Int("total_documents", totalDocuments),
		slog.Int("total_sealed", totalSealed),
		slog.Int("total_failed", totalFailed),
	)

	return nil
}
