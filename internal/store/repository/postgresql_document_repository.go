// Package repository implements document persistence for PostgreSQL and MySQL.
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

// PostgreSQLDocumentRepository implements Document persistence for PostgreSQL.
// The document body lives in a JSONB column; transaction support via database.GetTx().
type PostgreSQLDocumentRepository struct {
	db *sql.DB
}

// NewPostgreSQLDocumentRepository creates a new PostgreSQL Document repository.
func NewPostgreSQLDocumentRepository(db *sql.DB) *PostgreSQLDocumentRepository {
	return &PostgreSQLDocumentRepository{db: db}
}

// Get retrieves a document by its hierarchical path, archived or not.
func (p *PostgreSQLDocumentRepository) Get(
	ctx context.Context,
	path string,
) (*storeDomain.Document, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT path, collection, tenant_id, record_id, doc, archived_at, created_at, updated_at
			  FROM documents
			  WHERE path = $1`

	return scanDocument(querier.QueryRowContext(ctx, query, path))
}

// Put inserts or replaces a document. On conflict the body and updated_at are
// replaced while the original created_at and the archive mark are preserved.
func (p *PostgreSQLDocumentRepository) Put(ctx context.Context, doc *storeDomain.Document) error {
	querier := database.GetTx(ctx, p.db)

	body, err := json.Marshal(doc.Data)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal document body")
	}

	query := `INSERT INTO documents (path, collection, tenant_id, record_id, doc, archived_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (path) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`

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
func (p *PostgreSQLDocumentRepository) Delete(ctx context.Context, path string) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM documents WHERE path = $1`, path)
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
func (p *PostgreSQLDocumentRepository) Archive(ctx context.Context, path string, archivedAt time.Time) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(
		ctx,
		`UPDATE documents SET archived_at = $2 WHERE path = $1`,
		path,
		archivedAt,
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
func (p *PostgreSQLDocumentRepository) Unarchive(ctx context.Context, path string) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `UPDATE documents SET archived_at = NULL WHERE path = $1`, path)
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
func (p *PostgreSQLDocumentRepository) List(
	ctx context.Context,
	collection, tenantID string,
	offset, limit int,
) ([]*storeDomain.Document, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT path, collection, tenant_id, record_id, doc, archived_at, created_at, updated_at
			  FROM documents
			  WHERE collection = $1 AND tenant_id = $2 AND archived_at IS NULL
			  ORDER BY record_id
			  LIMIT $3 OFFSET $4`

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
func (p *PostgreSQLDocumentRepository) ListOlderThan(
	ctx context.Context,
	collection string,
	cutoff time.Time,
	limit int,
) ([]*storeDomain.Document, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT path, collection, tenant_id, record_id, doc, archived_at, created_at, updated_at
			  FROM documents
			  WHERE collection = $1 AND updated_at < $2
			  ORDER BY updated_at
			  LIMIT $3`

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
func (p *PostgreSQLDocumentRepository) ListExpired(
	ctx context.Context,
	collection string,
	cutoff time.Time,
	limit int,
) ([]*storeDomain.Document, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT path, collection, tenant_id, record_id, doc, archived_at, created_at, updated_at
			  FROM documents
			  WHERE collection = $1 AND updated_at < $2 AND archived_at IS NULL
			  ORDER BY updated_at
			  LIMIT $3`

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
func (p *PostgreSQLDocumentRepository) CountExpired(
	ctx context.Context,
	collection string,
	cutoff time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*)
			  FROM documents
			  WHERE collection = $1 AND updated_at < $2 AND archived_at IS NULL`

	var count int64
	if err := querier.QueryRowContext(ctx, query, collection, cutoff).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired documents")
	}

	return count, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*storeDomain.Document, error) {
	var doc storeDomain.Document
	var body []byte
	var archivedAt sql.NullTime

	err := row.Scan(
		&doc.Path,
		&doc.Collection,
		&doc.TenantID,
		&doc.RecordID,
		&body,
		&archivedAt,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan document")
	}

	if archivedAt.Valid {
		doc.ArchivedAt = &archivedAt.Time
	}

	if err := json.Unmarshal(body, &doc.Data); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal document body")
	}

	return &doc, nil
}

func collectDocuments(rows *sql.Rows) ([]*storeDomain.Document, error) {
	// Initialize empty slice to avoid returning nil for empty results
	docs := make([]*storeDomain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate documents")
	}

	return docs, nil
}
