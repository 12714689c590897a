// Package repository provides PostgreSQL and MySQL persistence for audit
// entries. The store is append-only: entries are inserted, read, and bulk
// expired, never updated.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/innwise/fieldvault/internal/audit/domain"
	"github.com/innwise/fieldvault/internal/database"
	apperrors "github.com/innwise/fieldvault/internal/errors"
	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
)

// PostgreSQLEntryRepository implements audit entry persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLEntryRepository struct {
	db *sql.DB
}

// Create inserts an audit entry. Handles nil metadata as database NULL.
func (p *PostgreSQLEntryRepository) Create(ctx context.Context, entry *auditDomain.Entry) error {
	querier := database.GetTx(ctx, p.db)

	var metadataJSON []byte
	var err error

	if entry.Metadata != nil {
		metadataJSON, err = json.Marshal(entry.Metadata)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit entry metadata")
		}
	}

	query := `INSERT INTO audit_entries (id, request_id, subject_id, tenant_id, domain, event, category, outcome, reason, metadata, signature, is_signed, retention_expiry, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = querier.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.RequestID,
		entry.SubjectID,
		entry.TenantID,
		string(entry.Domain),
		string(entry.Event),
		string(entry.Category),
		string(entry.Outcome),
		entry.Reason,
		metadataJSON,
		entry.Signature,
		entry.IsSigned,
		entry.RetentionExpiry,
		entry.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit entry")
	}

	return nil
}

// Get retrieves a single audit entry by ID.
func (p *PostgreSQLEntryRepository) Get(ctx context.Context, id uuid.UUID) (*auditDomain.Entry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, request_id, subject_id, tenant_id, domain, event, category, outcome, reason, metadata, signature, is_signed, retention_expiry, created_at
			  FROM audit_entries
			  WHERE id = $1`

	var entry auditDomain.Entry
	var domain, event, category, outcome string
	var metadataJSON []byte

	err := querier.QueryRowContext(ctx, query, id).Scan(
		&entry.ID,
		&entry.RequestID,
		&entry.SubjectID,
		&entry.TenantID,
		&domain,
		&event,
		&category,
		&outcome,
		&entry.Reason,
		&metadataJSON,
		&entry.Signature,
		&entry.IsSigned,
		&entry.RetentionExpiry,
		&entry.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "audit entry not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get audit entry")
	}

	entry.Domain = fieldcryptDomain.RecordDomain(domain)
	entry.Event = auditDomain.EventType(event)
	entry.Category = auditDomain.Category(category)
	entry.Outcome = auditDomain.Outcome(outcome)

	if metadataJSON != nil {
		if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit entry metadata")
		}
	}

	return &entry, nil
}

// List retrieves audit entries ordered by created_at descending (newest first)
// with pagination and optional filtering. Empty tenantID and category mean no
// filter; nil time pointers mean no bound. Both time boundaries are inclusive.
// All timestamps are expected in UTC.
func (p *PostgreSQLEntryRepository) List(
	ctx context.Context,
	offset, limit int,
	tenantID string,
	category auditDomain.Category,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.Entry, error) {
	querier := database.GetTx(ctx, p.db)

	var conditions []string
	var args []any
	argIndex := 1

	if tenantID != "" {
		conditions = append(conditions, fmt.Sprintf("tenant_id = $%d", argIndex))
		args = append(args, tenantID)
		argIndex++
	}

	if category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, string(category))
		argIndex++
	}

	if createdAtFrom != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIndex))
		args = append(args, *createdAtFrom)
		argIndex++
	}

	if createdAtTo != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIndex))
		args = append(args, *createdAtTo)
		argIndex++
	}

	query := `SELECT id, request_id, subject_id, tenant_id, domain, event, category, outcome, reason, metadata, signature, is_signed, retention_expiry, created_at
			  FROM audit_entries`

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	defer func() {
		_ = rows.Close()
	}()

	// Initialize empty slice to avoid returning nil for empty results
	entries := make([]*auditDomain.Entry, 0)
	for rows.Next() {
		var entry auditDomain.Entry
		var domain, event, category, outcome string
		var metadataJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&entry.SubjectID,
			&entry.TenantID,
			&domain,
			&event,
			&category,
			&outcome,
			&entry.Reason,
			&metadataJSON,
			&entry.Signature,
			&entry.IsSigned,
			&entry.RetentionExpiry,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit entry")
		}

		entry.Domain = fieldcryptDomain.RecordDomain(domain)
		entry.Event = auditDomain.EventType(event)
		entry.Category = auditDomain.Category(category)
		entry.Outcome = auditDomain.Outcome(outcome)

		if metadataJSON != nil {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal audit entry metadata")
			}
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit entries")
	}

	return entries, nil
}

// DeleteExpired removes audit entries whose retention_expiry has passed.
// When dryRun is true, returns the count via SELECT COUNT(*) without deleting.
// All timestamps are expected in UTC.
func (p *PostgreSQLEntryRepository) DeleteExpired(
	ctx context.Context,
	now time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	if dryRun {
		query := `SELECT COUNT(*) FROM audit_entries WHERE retention_expiry < $1`
		var count int64
		if err := querier.QueryRowContext(ctx, query, now).Scan(&count); err != nil {
			return 0, apperrors.Wrap(err, "failed to count expired audit entries")
		}
		return count, nil
	}

	query := `DELETE FROM audit_entries WHERE retention_expiry < $1`
	result, err := querier.ExecContext(ctx, query, now)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired audit entries")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}

	return count, nil
}

// NewPostgreSQLEntryRepository creates a new PostgreSQL audit entry repository.
func NewPostgreSQLEntryRepository(db *sql.DB) *PostgreSQLEntryRepository {
	return &PostgreSQLEntryRepository{db: db}
}
