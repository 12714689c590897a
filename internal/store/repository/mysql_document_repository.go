package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/innwise/fieldvault/internal/database"
	apperrors "github.com/innwise/fieldvault/internal/errors"
	storeDomain "github.com/innwise/fieldvault/internal/store/domain"
)

// MySQLDocumentRepository implements Document persistence for MySQL.
// The document body lives in a JSON column; transaction support via database.GetTx().
type MySQLDocumentRepository struct {
	db *sql.DB
}

// NewMySQLDocumentRepository creates a new MySQL Document repository.
func NewMySQLDocumentRepository(db *sql.DB) *MySQLDocumentRepository {
	return &MySQLDocumentRepository{db: db}
}

// Get retrieves a document by its hierarchical path, archived or not.
func (m *MySQLDocumentRepository) Get(
	ctx context.Context,
	path string,
) (*storeDomain.Document, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT path, collection, tenant_id, record_id, doc, archived_at, created_at, updated_at
			  FROM documents
			  WHERE path = ?`

	return scanDocument(querier.QueryRowContext(ctx, query, path))
}

// Put inserts or replaces a document. On duplicate key the body and
// updated_at are replaced while the original created_at and the archive mark
// are preserved.
func (m *MySQLDocumentRepository) Put(ctx context.Context, doc *storeDomain.Document) error {
	querier := database.GetTx(ctx, m.db)

	body, err := json.Marshal(doc.Data)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal document body")
	}

	query := `INSERT INTO documents (path, collection, tenant_id, record_id, doc, archived_at, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE doc = VALUES(doc), updated_at = VALUES(updated_at)`

	_, err = querier.ExecContext(
		ctx,
		query,
		doc.Path,
		doc.Collection,
		doc.TenantID,
		doc.RecordID,
		body,
		doc.ArchivedAt,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to put document")
	}

	return nil
}

// Delete removes a document by path. Returns ErrNotFound when nothing matched.
func (m *MySQLDocumentRepository) Delete(ctx context.Context, path string) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, path)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete document")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check deleted rows")
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Archive marks a document as retired from the active dataset. Returns
// ErrNotFound when no document lives at the path.
func (m *MySQLDocumentRepository) Archive(ctx context.Context, path string, archivedAt time.Time) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(
		ctx,
		`UPDATE documents SET archived_at = ? WHERE path = ?`,
		archivedAt,
		path,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to archive document")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check archived rows")
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Unarchive clears a document's archive mark, returning it to the active
// dataset. Returns ErrNotFound when no document lives at the path.
func (m *MySQLDocumentRepository) Unarchive(ctx context.Context, path string) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `UPDATE documents SET archived_at = NULL WHERE path = ?`, path)
	if err != nil {
		return apperrors.Wrap(err, "failed to unarchive document")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check unarchived rows")
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// List retrieves a tenant's active documents in a collection ordered by record
// id with offset/limit pagination. Archived documents are excluded. Returns an
// empty slice when nothing matches.
func (m *MySQLDocumentRepository) List(
	ctx context.Context,
	collection, tenantID string,
	offset, limit int,
) ([]*storeDomain.Document, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT path, collection, tenant_id, record_id, doc, archived_at, created_at, updated_at
			  FROM documents
			  WHERE collection = ? AND tenant_id = ? AND archived_at IS NULL
			  ORDER BY record_id
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, collection, tenantID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list documents")
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectDocuments(rows)
}

// ListOlderThan retrieves documents in a collection whose last write is before
// the cutoff, across all tenants, oldest first, archived documents included.
// Used by key-rotation re-encryption, which must rewrap archived envelopes
// too; limit bounds one batch.
func (m *MySQLDocumentRepository) ListOlderThan(
	ctx context.Context,
	collection string,
	cutoff time.Time,
	limit int,
) ([]*storeDomain.Document, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT path, collection, tenant_id, record_id, doc, archived_at, created_at, updated_at
			  FROM documents
			  WHERE collection = ? AND updated_at < ?
			  ORDER BY updated_at
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, collection, cutoff, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list documents older than cutoff")
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectDocuments(rows)
}

// ListExpired retrieves active documents in a collection whose last write is
// before the cutoff, across all tenants, oldest first. Archived documents are
// excluded so the retention sweep never acts on them twice; limit bounds one
// batch.
func (m *MySQLDocumentRepository) ListExpired(
	ctx context.Context,
	collection string,
	cutoff time.Time,
	limit int,
) ([]*storeDomain.Document, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT path, collection, tenant_id, record_id, doc, archived_at, created_at, updated_at
			  FROM documents
			  WHERE collection = ? AND updated_at < ? AND archived_at IS NULL
			  ORDER BY updated_at
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, collection, cutoff, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list expired documents")
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectDocuments(rows)
}

// CountExpired counts active documents in a collection whose last write is
// before the cutoff. Used by dry-run sweeps, which must report without
// mutating.
func (m *MySQLDocumentRepository) CountExpired(
	ctx context.Context,
	collection string,
	cutoff time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*)
			  FROM documents
			  WHERE collection = ? AND updated_at < ? AND archived_at IS NULL`

	var count int64
	if err := querier.QueryRowContext(ctx, query, collection, cutoff).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired documents")
	}

	return count, nil
}
