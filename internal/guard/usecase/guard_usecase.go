package usecase

import (
	"context"
	"log/slog"

	auditDomain "github.com/innwise/fieldvault/internal/audit/domain"
	auditUseCase "github.com/innwise/fieldvault/internal/audit/usecase"
	apperrors "github.com/innwise/fieldvault/internal/errors"
	guardDomain "github.com/innwise/fieldvault/internal/guard/domain"
	identityDomain "github.com/innwise/fieldvault/internal/identity/domain"
	keysUseCase "github.com/innwise/fieldvault/internal/keys/usecase"
	tenantDomain "github.com/innwise/fieldvault/internal/tenant/domain"
	tenantUseCase "github.com/innwise/fieldvault/internal/tenant/usecase"
)

// guardUseCase implements GuardUseCase.
type guardUseCase struct {
	directory tenantUseCase.DirectoryUseCase
	keys      keysUseCase.Provider
	audit     auditUseCase.AuditUseCase
	logger    *slog.Logger
}

// Authorize evaluates the chain in its fixed order. The tenant id comes from
// the resource path alone; the role lookup is scoped by that tenant, so
// membership is verified before any role is read. The domain key is resolved
// last, only for requests that passed every check.
func (g *guardUseCase) Authorize(
	ctx context.Context,
	op *guardDomain.Operation,
	resource *guardDomain.ResourcePath,
	identity *identityDomain.Identity,
) (*guardDomain.AccessGrant, []byte, error) {
	if identity == nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrUnauthenticated, "no verified identity")
	}
	if err := resource.Validate(); err != nil {
		return nil, nil, err
	}

	var role tenantDomain.Role
	if op.UserScoped {
		// Identity equality replaces the tenant and role checks: the caller
		// may only touch the record carrying their own subject id.
		if resource.RecordID == "" || resource.RecordID != identity.SubjectID {
			g.recordSecurityEvent(ctx, op, resource, identity,
				auditDomain.EventPermissionDenied, auditDomain.OutcomeDenied, guardDomain.ReasonSubjectMismatch)
			return nil, nil, guardDomain.ErrSubjectMismatch
		}
	} else {
		member, err := g.directory.IsMember(ctx, identity.SubjectID, resource.TenantID)
		if err != nil {
			return nil, nil, apperrors.Wrap(err, "failed to check tenant membership")
		}
		if !member {
			g.recordSecurityEvent(ctx, op, resource, identity,
				auditDomain.EventPermissionDenied, auditDomain.OutcomeDenied, guardDomain.ReasonNotMember)
			return nil, nil, guardDomain.ErrNotMember
		}

		role, err = g.directory.RoleOf(ctx, identity.SubjectID, resource.TenantID)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				// Membership was revoked between the two lookups.
				g.recordSecurityEvent(ctx, op, resource, identity,
					auditDomain.EventPermissionDenied, auditDomain.OutcomeDenied, guardDomain.ReasonNotMember)
				return nil, nil, guardDomain.ErrNotMember
			}
			return nil, nil, apperrors.Wrap(err, "failed to resolve role")
		}

		if !op.Allows(role) {
			g.recordSecurityEvent(ctx, op, resource, identity,
				auditDomain.EventPermissionDenied, auditDomain.OutcomeDenied, guardDomain.ReasonRoleNotAllowed)
			return nil, nil, guardDomain.ErrRoleNotAllowed
		}
	}

	if op.RequiresStepUp(role) && !identity.StepUp {
		g.recordSecurityEvent(ctx, op, resource, identity,
			auditDomain.EventStepUpRejected, auditDomain.OutcomeDenied, guardDomain.ReasonStepUpRequired)
		return nil, nil, guardDomain.ErrStepUpRequired
	}

	// Operations outside any key domain, like audit trail reads, carry no
	// key material.
	var key []byte
	if op.Domain != "" {
		resolved, err := g.keys.DomainKey(ctx, op.Domain)
		if err != nil {
			g.recordSecurityEvent(ctx, op, resource, identity,
				auditDomain.EventKeyResolutionFailed, auditDomain.OutcomeFailure, guardDomain.ReasonKeyResolution)
			return nil, nil, apperrors.Wrap(err, "failed to resolve domain key")
		}
		key = resolved
	}

	grant := &guardDomain.AccessGrant{
		SubjectID: identity.SubjectID,
		TenantID:  resource.TenantID,
		Role:      role,
		Operation: op,
		StepUp:    identity.StepUp,
	}

	return grant, key, nil
}

// recordSecurityEvent writes one audit entry for a rejected or failed chain
// evaluation. A failed write is logged and swallowed: the denial itself must
// still reach the caller.
func (g *guardUseCase) recordSecurityEvent(
	ctx context.Context,
	op *guardDomain.Operation,
	resource *guardDomain.ResourcePath,
	identity *identityDomain.Identity,
	eventType auditDomain.EventType,
	outcome auditDomain.Outcome,
	reason string,
) {
	err := g.audit.Record(ctx, &auditDomain.Event{
		SubjectID: identity.SubjectID,
		TenantID:  resource.TenantID,
		Domain:    op.Domain,
		Type:      eventType,
		Outcome:   outcome,
		Reason:    reason,
		Metadata: map[string]any{
			"path":      resource.String(),
			"operation": op.Name,
		},
	})
	if err != nil && g.logger != nil {
		g.logger.Error("failed to record security audit event",
			slog.String("event", string(eventType)),
			slog.String("reason", reason),
			slog.Any("error", err),
		)
	}
}

// NewGuardUseCase creates a guard over the tenant directory, the domain key
// provider, and the audit trail.
func NewGuardUseCase(
	directory tenantUseCase.DirectoryUseCase,
	keys keysUseCase.Provider,
	audit auditUseCase.AuditUseCase,
	logger *slog.Logger,
) GuardUseCase {
	return &guardUseCase{
		directory: directory,
		keys:      keys,
		audit:     audit,
		logger:    logger,
	}
}
