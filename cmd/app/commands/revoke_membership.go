package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	auditDomain "github.com/innwise/fieldvault/internal/audit/domain"
	auditUseCase "github.com/innwise/fieldvault/internal/audit/usecase"
	tenantUseCase "github.com/innwise/fieldvault/internal/tenant/usecase"
)

// RunRevokeMembership removes a subject's membership from a tenant and
// records the revocation in the audit trail. Access ends at the subject's
// next guarded request; issued tokens are not invalidated.
//
// Requirements: Database must be migrated and accessible.
func RunRevokeMembership(
	ctx context.Context,
	directoryUseCase tenantUseCase.DirectoryUseCase,
	auditUseCase auditUseCase.AuditUseCase,
	logger *slog.Logger,
	writer io.Writer,
	tenantID, subjectID string,
	format string,
) error {
	tenantID = strings.TrimSpace(tenantID)
	subjectID = strings.TrimSpace(subjectID)
	if tenantID == "" {
		return fmt.Errorf("tenant cannot be empty")
	}
	if subjectID == "" {
		return fmt.Errorf("subject cannot be empty")
	}

	logger.Info("revoking membership",
		slog.String("tenant_id", tenantID),
		slog.String("subject_id", subjectID),
	)

	if err := directoryUseCase.Revoke(ctx, subjectID, tenantID); err != nil {
		return fmt.Errorf("failed to revoke membership: %w", err)
	}

	// Role changes are security-relevant, so a failed audit write is an error
	// even though the revocation itself has been persisted
	if err := auditUseCase.Record(ctx, &auditDomain.Event{
		SubjectID: operatorSubject,
		TenantID:  tenantID,
		Type:      auditDomain.EventRoleRevoked,
		Outcome:   auditDomain.OutcomeSuccess,
		Metadata: map[string]any{
			"subject_id": subjectID,
		},
	}); err != nil {
		return fmt.Errorf("membership revoked but audit record failed: %w", err)
	}

	// Output result based on format
	if format == "json" {
		if err := outputRevokeJSON(writer, tenantID, subjectID); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputRevokeText(writer, tenantID, subjectID)
	}

	logger.Info("membership revoked",
		slog.String("tenant_id", tenantID),
		slog.String("subject_id", subjectID),
	)

	return nil
}

// outputRevokeText outputs the result in human-readable text format.
func outputRevokeText(writer io.Writer, tenantID, subjectID string) {
	_, _ = fmt.Fprintln(writer, "Membership revoked successfully!")
	_, _ = fmt.Fprintf(writer, "  Tenant:  %s\n", tenantID)
	_, _ = fmt.Fprintf(writer, "  Subject: %s\n", subjectID)
}

// outputRevokeJSON outputs the result in JSON format for machine consumption.
func outputRevokeJSON(writer io.Writer, tenantID, subjectID string) error {
	result := map[string]string{
		"tenant_id":  tenantID,
		"subject_id": subjectID,
		"revoked":    "true",
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
