package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/innwise/fieldvault/internal/database"
	apperrors "github.com/innwise/fieldvault/internal/errors"
	retentionDomain "github.com/innwise/fieldvault/internal/retention/domain"
)

// MySQLDeletionRepository implements DeletionRecord persistence for MySQL
// databases. UUIDs are stored as BINARY(16) and must be
// marshaled/unmarshaled.
type MySQLDeletionRepository struct {
	db *sql.DB
}

// NewMySQLDeletionRepository creates a new MySQL DeletionRecord repository
// instance.
func NewMySQLDeletionRepository(db *sql.DB) *MySQLDeletionRepository {
	return &MySQLDeletionRepository{db: db}
}

// Create inserts a new deletion record.
func (m *MySQLDeletionRepository) Create(
	ctx context.Context,
	record *retentionDomain.DeletionRecord,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal deletion record id")
	}

	query := `INSERT INTO deletion_records (id, tenant_id, subject_id, status, deleted_at, grace_period_end, anonymized_at, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLDeletionRepository) GetBySubject(
	ctx context.Context,
	tenantID, subjectID string,
) (*retentionDomain.DeletionRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, tenant_id, subject_id, status, deleted_at, grace_period_end, anonymized_at, created_at, updated_at
			  FROM deletion_records
			  WHERE tenant_id = ? AND subject_id = ?
			  ORDER BY created_at DESC
			  LIMIT 1`

	record, err := scanMySQLDeletionRecord(querier.QueryRowContext(ctx, query, tenantID, subjectID))
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return record, nil
}

// Update persists a state transition on an existing deletion record.
func (m *MySQLDeletionRepository) Update(
	ctx context.Context,
	record *retentionDomain.DeletionRecord,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal deletion record id")
	}

	query := `UPDATE deletion_records
			  SET status = ?, anonymized_at = ?, updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		string(record.Status),
		record.AnonymizedAt,
		record.UpdatedAt,
		id,
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
func (m *MySQLDeletionRepository) ListDue(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*retentionDomain.DeletionRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, tenant_id, subject_id, status, deleted_at, grace_period_end, anonymized_at, created_at, updated_at
			  FROM deletion_records
			  WHERE status = ? AND grace_period_end <= ?
			  ORDER BY grace_period_end
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, string(retentionDomain.StatusSoftDeleted), now, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list due deletion records")
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*retentionDomain.DeletionRecord, 0)
	for rows.Next() {
		record, err := scanMySQLDeletionRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate deletion records")
	}

	return records, nil
}

// CountDue counts pending deletion records whose grace period has ended.
// Used by dry-run sweeps, which must report without mutating.
func (m *MySQLDeletionRepository) CountDue(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*)
			  FROM deletion_records
			  WHERE status = ? AND grace_period_end <= ?`

	var count int64
	if err := querier.QueryRowContext(ctx, query, string(retentionDomain.StatusSoftDeleted), now).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count due deletion records")
	}

	return count, nil
}

// mysqlRowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type mysqlRowScanner interface {
	Scan(dest ...any) error
}

func scanMySQLDeletionRecord(row mysqlRowScanner) (*retentionDomain.DeletionRecord, error) {
	var record retentionDomain.DeletionRecord
	var idBin []byte
	var status string
	var anonymizedAt sql.NullTime

	err := row.Scan(
		&idBin,
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
		return nil, err
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to scan deletion record")
	}

	if err := record.ID.UnmarshalBinary(idBin); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal deletion record id")
	}

	record.Status = retentionDomain.Status(status)
	if anonymizedAt.Valid {
		record.AnonymizedAt = &anonymizedAt.Time
	}

	return &record, nil
}
