// Package repository implements deletion record persistence for PostgreSQL
// and MySQL.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/innwise/fieldvault/internal/database"
	apperrors "github.com/innwise/fieldvault/internal/errors"
	retentionDomain "github.com/innwise/fieldvault/internal/retention/domain"
)

// PostgreSQLDeletionRepository implements DeletionRecord persistence for
// PostgreSQL databases.
type PostgreSQLDeletionRepository struct {
	db *sql.DB
}

// NewPostgreSQLDeletionRepository creates a new PostgreSQL DeletionRecord
// repository instance.
func NewPostgreSQLDeletionRepository(db *sql.DB) *PostgreSQLDeletionRepository {
	return &PostgreSQLDeletionRepository{db: db}
}

// Create inserts a new deletion record.
func (p *PostgreSQLDeletionRepository) Create(
	ctx context.Context,
	record *retentionDomain.DeletionRecord,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO deletion_records (id, tenant_id, subject_id, status, deleted_at, grace_period_end, anonymized_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.TenantID,
		record.SubjectID,
		string(record.Status),
		record.DeletedAt,
		record.GracePeriodEnd,
		record.AnonymizedAt,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create deletion record")
	}
	return nil
}

// GetBySubject retrieves the latest deletion record for a subject in a
// tenant. A subject accrues one record per lifecycle; the newest one carries
// the current state.
func (p *PostgreSQLDeletionRepository) GetBySubject(
	ctx context.Context,
	tenantID, subjectID string,
) (*retentionDomain.DeletionRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, tenant_id, subject_id, status, deleted_at, grace_period_end, anonymized_at, created_at, updated_at
			  FROM deletion_records
			  WHERE tenant_id = $1 AND subject_id = $2
			  ORDER BY created_at DESC
			  LIMIT 1`

	var record retentionDomain.DeletionRecord
	var status string
	var anonymizedAt sql.NullTime

	err := querier.QueryRowContext(ctx, query, tenantID, subjectID).Scan(
		&record.ID,
		&record.TenantID,
		&record.SubjectID,
		&status,
		&record.DeletedAt,
		&record.GracePeriodEnd,
		&anonymizedAt,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get deletion record")
	}

	record.Status = retentionDomain.Status(status)
	if anonymizedAt.Valid {
		record.AnonymizedAt = &anonymizedAt.Time
	}

	return &record, nil
}

// Update persists a state transition on an existing deletion record.
func (p *PostgreSQLDeletionRepository) Update(
	ctx context.Context,
	record *retentionDomain.DeletionRecord,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE deletion_records
			  SET status = $2, anonymized_at = $3, updated_at = $4
			  WHERE id = $1`

	result, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
		string(record.Status),
		record.AnonymizedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update deletion record")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check updated rows")
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// ListDue retrieves pending deletion records whose grace period has ended,
// oldest grace end first. Limit bounds one sweep batch.
func (p *PostgreSQLDeletionRepository) ListDue(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*retentionDomain.DeletionRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, tenant_id, subject_id, status, deleted_at, grace_period_end, anonymized_at, created_at, updated_at
			  FROM deletion_records
			  WHERE status = $1 AND grace_period_end <= $2
			  ORDER BY grace_period_end
			  LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, string(retentionDomain.StatusSoftDeleted), now, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list due deletion records")
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*retentionDomain.DeletionRecord, 0)
	for rows.Next() {
		var record retentionDomain.DeletionRecord
		var status string
		var anonymizedAt sql.NullTime

		err := rows.Scan(
			&record.ID,
			&record.TenantID,
			&record.SubjectID,
			&status,
			&record.DeletedAt,
			&record.GracePeriodEnd,
			&anonymizedAt,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan deletion record")
		}

		record.Status = retentionDomain.Status(status)
		if anonymizedAt.Valid {
			record.AnonymizedAt = &anonymizedAt.Time
		}

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate deletion records")
	}

	return records, nil
}

// CountDue counts pending deletion records whose grace period has ended.
// Used by dry-run sweeps, which must report without mutating.
func (p *PostgreSQLDeletionRepository) CountDue(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*)
			  FROM deletion_records
			  WHERE status = $1 AND grace_period_end <= $2`

	var count int64
	if err := querier.QueryRowContext(ctx, query, string(retentionDomain.StatusSoftDeleted), now).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count due deletion records")
	}

	return count, nil
}
