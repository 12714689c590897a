// Package usecase defines business logic for tenant membership resolution.
package usecase

import (
	"context"

	tenantDomain "github.com/innwise/fieldvault/internal/tenant/domain"
)

// MembershipRepository defines persistence operations for tenant memberships.
// Implementations must support transaction-aware operations via context propagation.
type MembershipRepository interface {
	// Create stores a new membership in the repository.
	Create(ctx context.Context, membership *tenantDomain.Membership) error

	// GetBySubjectAndTenant retrieves the membership for a subject/tenant pair.
	// Returns ErrNotFound if the subject does not belong to the tenant.
	GetBySubjectAndTenant(ctx context.Context, subjectID, tenantID string) (*tenantDomain.Membership, error)

	// Delete removes the membership for a subject/tenant pair.
	// Returns ErrNotFound if the subject does not belong to the tenant.
	Delete(ctx context.Context, subjectID, tenantID string) error
}

// DirectoryUseCase answers membership questions for the authorization guard
// and manages membership grants.
//
// IsMember and RoleOf are deliberately separate operations: the guard checks
// tenant scope before it ever looks at a role, and the split keeps that
// ordering observable.
type DirectoryUseCase interface {
	// IsMember reports whether the subject belongs to the tenant.
	IsMember(ctx context.Context, subjectID, tenantID string) (bool, error)

	// RoleOf returns the subject's role within the tenant.
	// Returns ErrNotFound if the subject does not belong to the tenant.
	RoleOf(ctx context.Context, subjectID, tenantID string) (tenantDomain.Role, error)

	// Grant creates a membership. Returns ErrMembershipExists when the
	// subject already belongs to the tenant and ErrInvalidRole for an
	// unassignable role.
	Grant(ctx context.Context, subjectID, tenantID string, role tenantDomain.Role) (*tenantDomain.Membership, error)

	// Revoke removes a membership. Returns ErrNotFound when the subject does
	// not belong to the tenant.
	Revoke(ctx context.Context, subjectID, tenantID string) error
}
