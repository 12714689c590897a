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
	tenantDomain "github.com/innwise/fieldvault/internal/tenant/domain"
	tenantUseCase "github.com/innwise/fieldvault/internal/tenant/usecase"
)

// RunCreateMembership grants a subject a role within a tenant and records the
// grant in the audit trail. The subject/tenant pair is unique; changing a role
// means revoking and granting again.
//
// Requirements: Database must be migrated and accessible.
func RunCreateMembership(
	ctx context.Context,
	directoryUseCase tenantUseCase.DirectoryUseCase,
	auditUseCase auditUseCase.AuditUseCase,
	logger *slog.Logger,
	writer io.Writer,
	tenantID, subjectID, roleStr string,
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

	role, err := parseRole(roleStr)
	if err != nil {
		return err
	}

	logger.Info("creating membership",
		slog.String("tenant_id", tenantID),
		slog.String("subject_id", subjectID),
		slog.String("role", string(role)),
	)

	membership, err := directoryUseCase.Grant(ctx, subjectID, tenantID, role)
	if err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}

	// Role changes are security-relevant, so a failed audit write is an error
	// even though the grant itself has been persisted
	if err := auditUseCase.Record(ctx, &auditDomain.Event{
		SubjectID: operatorSubject,
		TenantID:  tenantID,
		Type:      auditDomain.EventRoleGranted,
		Outcome:   auditDomain.OutcomeSuccess,
		Metadata: map[string]any{
			"subject_id": subjectID,
			"role":       string(role),
		},
	}); err != nil {
		return fmt.Errorf("membership created but audit record failed: %w", err)
	}

	// Output result based on format
	if format == "json" {
		if err := outputMembershipJSON(writer, membership); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputMembershipText(writer, membership)
	}

	logger.Info("membership created",
		slog.String("membership_id", membership.ID.String()),
		slog.String("tenant_id", tenantID),
		slog.String("subject_id", subjectID),
		slog.String("role", string(role)),
	)

	return nil
}

// parseRole converts a role string to tenantDomain.Role.
// Returns an error if the role string is not assignable.
func parseRole(roleStr string) (tenantDomain.Role, error) {
	role := tenantDomain.Role(roleStr)
	if !role.Valid() {
		return "", fmt.Errorf(
			"invalid role: %s (valid options: admin, hr_manager, finance_manager, payroll_officer, supervisor, staff)",
			roleStr,
		)
	}
	return role, nil
}

// outputMembershipText outputs the result in human-readable text format.
func outputMembershipText(writer io.Writer, membership *tenantDomain.Membership) {
	_, _ = fmt.Fprintln(writer, "Membership created successfully!")
	_, _ = fmt.Fprintf(writer, "  Membership ID: %s\n", membership.ID.String())
	_, _ = fmt.Fprintf(writer, "  Tenant:        %s\n", membership.TenantID)
	_, _ = fmt.Fprintf(writer, "  Subject:       %s\n", membership.SubjectID)
	_, _ = fmt.Fprintf(writer, "  Role:          %s\n", membership.Role)
}

// outputMembershipJSON outputs the result in JSON format for machine consumption.
func outputMembershipJSON(writer io.Writer, membership *tenantDomain.Membership) error {
	result := map[string]string{
		"membership_id": membership.ID.String(),
		"tenant_id":     membership.TenantID,
		"subject_id":    membership.SubjectID,
		"role":          string(membership.Role),
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
