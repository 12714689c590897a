// Package repository implements membership persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"

	"github.com/innwise/fieldvault/internal/database"
	apperrors "github.com/innwise/fieldvault/internal/errors"
	tenantDomain "github.com/innwise/fieldvault/internal/tenant/domain"
)

// PostgreSQLMembershipRepository implements Membership persistence for PostgreSQL databases.
type PostgreSQLMembershipRepository struct {
	db *sql.DB
}

// Create inserts a new membership into the PostgreSQL database.
func (p *PostgreSQLMembershipRepository) Create(
	ctx context.Context,
	membership *tenantDomain.Membership,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO memberships (id, subject_id, tenant_id, role, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		membership.ID,
		membership.SubjectID,
		membership.TenantID,
		membership.Role,
		membership.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create membership")
	}
	return nil
}

// GetBySubjectAndTenant retrieves the membership for a subject/tenant pair.
func (p *PostgreSQLMembershipRepository) GetBySubjectAndTenant(
	ctx context.Context,
	subjectID, tenantID string,
) (*tenantDomain.Membership, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, subject_id, tenant_id, role, created_at
			  FROM memberships
			  WHERE subject_id = $1 AND tenant_id = $2
			  LIMIT 1`

	var membership tenantDomain.Membership
	err := querier.QueryRowContext(ctx, query, subjectID, tenantID).Scan(
		&membership.ID,
		&membership.SubjectID,
		&membership.TenantID,
		&membership.Role,
		&membership.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get membership")
	}

	return &membership, nil
}

// Delete removes the membership for a subject/tenant pair.
func (p *PostgreSQLMembershipRepository) Delete(
	ctx context.Context,
	subjectID, tenantID string,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM memberships
			  WHERE subject_id = $1 AND tenant_id = $2`

	result, err := querier.ExecContext(ctx, query, subjectID, tenantID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete membership")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}

	if rowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// NewPostgreSQLMembershipRepository creates a new PostgreSQL Membership repository instance.
func NewPostgreSQLMembershipRepository(db *sql.DB) *PostgreSQLMembershipRepository {
	return &PostgreSQLMembershipRepository{db: db}
}
