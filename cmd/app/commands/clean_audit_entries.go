package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	auditUseCase "github.com/innwise/fieldvault/internal/audit/usecase"
)

// RunCleanAuditEntries deletes audit entries past their retention expiry.
// The expiry was stamped onto each entry at write time from its category, so
// no age parameter exists. Supports dry-run mode to preview the deletion count
// and both text/JSON output formats.
//
// Requirements: Database must be migrated and accessible.
func RunCleanAuditEntries(
	ctx context.Context,
	auditUseCase auditUseCase.AuditUseCase,
	logger *slog.Logger,
	writer io.Writer,
	dryRun bool,
	format string,
) error {
	logger.Info("cleaning audit entries", slog.Bool("dry_run", dryRun))

	count, err := auditUseCase.DeleteExpired(ctx, dryRun)
	if err != nil {
		return fmt.Errorf("failed to delete audit entries: %w", err)
	}

	// Output result based on format
	if format == "json" {
		if err := outputCleanJSON(writer, count, dryRun); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputCleanText(writer, count, dryRun)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}

// outputCleanText outputs the result in human-readable text format.
func outputCleanText(writer io.Writer, count int64, dryRun bool) {
	if dryRun {
		_, _ = fmt.Fprintf(writer, "Dry-run mode: Would delete %d audit entry(ies) past their retention expiry\n", count)
	} else {
		_, _ = fmt.Fprintf(writer, "Successfully deleted %d audit entry(ies) past their retention expiry\n", count)
	}
}

// outputCleanJSON outputs the result in JSON format for machine consumption.
func outputCleanJSON(writer io.Writer, count int64, dryRun bool) error {
	result := map[string]interface{}{
		"count":   count,
		"dry_run": dryRun,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
