package repository

import (
	"context"
	"database/sql"

	"github.com/innwise/fieldvault/internal/database"
	apperrors "github.com/innwise/fieldvault/internal/errors"
	tenantDomain "github.com/innwise/fieldvault/internal/tenant/domain"
)

// MySQLMembershipRepository implements Membership persistence for MySQL databases.
type MySQLMembershipRepository struct {
	db *sql.DB
}

// Create inserts a new membership into the MySQL database.
func (m *MySQLMembershipRepository) Create(
	ctx context.Context,
	membership *tenantDomain.Membership,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO memberships (id, subject_id, tenant_id, role, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	id, err := membership.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal membership id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLMembershipRepository) GetBySubjectAndTenant(
	ctx context.Context,
	subjectID, tenantID string,
) (*tenantDomain.Membership, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, subject_id, tenant_id, role, created_at
			  FROM memberships
			  WHERE subject_id = ? AND tenant_id = ?
			  LIMIT 1`

	var membership tenantDomain.Membership
	var id []byte

	err := querier.QueryRowContext(ctx, query, subjectID, tenantID).Scan(
		&id,
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

	if err := membership.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal membership id")
	}

	return &membership, nil
}

// Delete removes the membership for a subject/tenant pair.
func (m *MySQLMembershipRepository) Delete(
	ctx context.Context,
	subjectID, tenantID string,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM memberships
			  WHERE subject_id = ? AND tenant_id = ?`

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

// NewMySQLMembershipRepository creates a new MySQL Membership repository instance.
func NewMySQLMembershipRepository(db *sql.DB) *MySQLMembershipRepository {
	return &MySQLMembershipRepository{db: db}
}
