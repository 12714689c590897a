package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/innwise/fieldvault/internal/database"
	apperrors "github.com/innwise/fieldvault/internal/errors"
	tenantDomain "github.com/innwise/fieldvault/internal/tenant/domain"
)

// directoryUseCase implements DirectoryUseCase over the membership repository.
type directoryUseCase struct {
	membershipRepo MembershipRepository
	txManager      database.TxManager
}

// NewDirectoryUseCase creates a new DirectoryUseCase with the provided dependencies.
func NewDirectoryUseCase(
	membershipRepo MembershipRepository,
	txManager database.TxManager,
) DirectoryUseCase {
	return &directoryUseCase{
		membershipRepo: membershipRepo,
		txManager:      txManager,
	}
}

// IsMember reports whether the subject belongs to the tenant.
func (d *directoryUseCase) IsMember(ctx context.Context, subjectID, tenantID string) (bool, error) {
	_, err := d.membershipRepo.GetBySubjectAndTenant(ctx, subjectID, tenantID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, apperrors.Wrap(err, "failed to check membership")
	}
	return true, nil
}

// RoleOf returns the subject's role within the tenant.
func (d *directoryUseCase) RoleOf(
	ctx context.Context,
	subjectID, tenantID string,
) (tenantDomain.Role, error) {
	membership, err := d.membershipRepo.GetBySubjectAndTenant(ctx, subjectID, tenantID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return "", err
		}
		return "", apperrors.Wrap(err, "failed to resolve role")
	}
	return membership.Role, nil
}

// Grant creates a membership after checking the role and the unique
// subject/tenant pair inside one transaction.
func (d *directoryUseCase) Grant(
	ctx context.Context,
	subjectID, tenantID string,
	role tenantDomain.Role,
) (*tenantDomain.Membership, error) {
	if !role.Valid() {
		return nil, tenantDomain.ErrInvalidRole
	}

	membership := &tenantDomain.Membership{
		ID:        uuid.Must(uuid.NewV7()),
		SubjectID: subjectID,
		TenantID:  tenantID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	err := d.txManager.WithTx(ctx, func(ctx context.Context) error {
		_, err := d.membershipRepo.GetBySubjectAndTenant(ctx, subjectID, tenantID)
		if err == nil {
			return tenantDomain.ErrMembershipExists
		}
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Wrap(err, "failed to check existing membership")
		}

		return d.membershipRepo.Create(ctx, membership)
	})
	if err != nil {
		return nil, err
	}

	return membership, nil
}

// Revoke removes a membership.
func (d *directoryUseCase) Revoke(ctx context.Context, subjectID, tenantID string) error {
	return d.membershipRepo.Delete(ctx, subjectID, tenantID)
}
