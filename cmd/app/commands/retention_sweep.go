package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	retentionUseCase "github.com/innwise/fieldvault/internal/retention/usecase"
)

// RunRetentionSweep executes one retention pass: expires audit entries,
// applies domain retention policies to documents, and finalizes deletion
// records whose grace period has ended. Supports dry-run mode to preview the
// pass and both text/JSON output formats.
//
// Requirements: Database must be migrated and a domain key source configured
// for policies that anonymize documents.
func RunRetentionSweep(
	ctx context.Context,
	sweeperUseCase retentionUseCase.SweeperUseCase,
	logger *slog.Logger,
	writer io.Writer,
	dryRun bool,
	format string,
) error {
	logger.Info("starting retention sweep", slog.Bool("dry_run", dryRun))

	result, err := sweeperUseCase.Sweep(ctx, dryRun)
	if err != nil {
		return fmt.Errorf("failed to run retention sweep: %w", err)
	}

	// Output result based on format
	if format == "json" {
		if err := outputSweepJSON(writer, result); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputSweepText(writer, result)
	}

	logger.Info("retention sweep completed",
		slog.Int64("audit_entries_deleted", result.AuditEntriesDeleted),
		slog.Int("archived", result.Archived),
		slog.Int("deleted", result.Deleted),
		slog.Int("anonymized", result.Anonymized),
		slog.Int("finalized", result.Finalized),
		slog.Int("failures", result.Failures),
		slog.Bool("dry_run", result.DryRun),
	)

	return nil
}

// outputSweepText outputs the sweep result in human-readable text format.
func outputSweepText(writer io.Writer, result *retentionUseCase.SweepResult) {
	if result.DryRun {
		_, _ = fmt.Fprintf(writer, "Retention Sweep (dry-run)\n")
	} else {
		_, _ = fmt.Fprintf(writer, "Retention Sweep\n")
	}
	_, _ = fmt.Fprintf(writer, "=========================\n\n")

	_, _ = fmt.Fprintf(writer, "Audit Entries Deleted:  %d\n", result.AuditEntriesDeleted)
	_, _ = fmt.Fprintf(writer, "Documents Archived:     %d\n", result.Archived)
	_, _ = fmt.Fprintf(writer, "Documents Deleted:      %d\n", result.Deleted)
	_, _ = fmt.Fprintf(writer, "Documents Anonymized:   %d\n", result.Anonymized)
	_, _ = fmt.Fprintf(writer, "Deletions Finalized:    %d\n", result.Finalized)
	_, _ = fmt.Fprintf(writer, "Failures:               %d\n", result.Failures)

	if result.Failures > 0 {
		_, _ = fmt.Fprintf(writer, "\nWARNING: %d record(s) could not be processed and will be retried on the next run\n", result.Failures)
	}
}

// outputSweepJSON outputs the sweep result in JSON format for machine consumption.
func outputSweepJSON(writer io.Writer, result *retentionUseCase.SweepResult) error {
	out := map[string]interface{}{
		"audit_entries_deleted": result.AuditEntriesDeleted,
		"archived":              result.Archived,
		"deleted":               result.Deleted,
		"anonymized":            result.Anonymized,
		"finalized":             result.Finalized,
		"failures":              result.Failures,
		"dry_run":               result.DryRun,
	}

	jsonBytes, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
