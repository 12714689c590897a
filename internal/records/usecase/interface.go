// Package usecase implements business logic orchestration for the records
// API. It coordinates the field codec, the document store, and the
// collection policies so handlers only ever deal with plaintext records and
// receipts.
package usecase

import (
	"context"
	"time"

	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
	storeDomain "github.com/innwise/fieldvault/internal/store/domain"
)

// DocumentRepository defines persistence operations for stored records.
type DocumentRepository interface {
	// Get retrieves a document by its hierarchical path.
	// Returns ErrNotFound if no document exists at the path.
	Get(ctx context.Context, path string) (*storeDomain.Document, error)

	// Put inserts or replaces a document, preserving the original created_at
	// on replace.
	Put(ctx context.Context, doc *storeDomain.Document) error

	// Delete removes a document by path.
	// Returns ErrNotFound if no document exists at the path.
	Delete(ctx context.Context, path string) error

	// List retrieves a tenant's documents in a collection ordered by record
	// id with pagination.
	List(ctx context.Context, collection, tenantID string, offset, limit int) ([]*storeDomain.Document, error)

	// ListOlderThan retrieves documents in a collection last written before
	// the cutoff, across all tenants, oldest first.
	ListOlderThan(ctx context.Context, collection string, cutoff time.Time, limit int) ([]*storeDomain.Document, error)
}

// RecordSummary is one list entry: the allow-list projection of a stored
// record. Sensitive fields are structurally absent from Data.
type RecordSummary struct {
	RecordID  string
	Data      fieldcryptDomain.Record
	UpdatedAt time.Time
}

// RecordDetail is a full record read with sensitive fields opened.
//
// Degraded is set when the codec redacted at least one field that could not
// be opened; with the fail-open codec the still-sealed envelope string is
// returned in place instead and Degraded stays false.
type RecordDetail struct {
	Collection string
	TenantID   string
	RecordID   string
	Data       fieldcryptDomain.Record
	Degraded   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// WriteReceipt acknowledges a write. It carries coordinates and timestamps
// only; sensitive plaintext is never echoed back.
type WriteReceipt struct {
	Collection string
	TenantID   string
	RecordID   string
	Degraded   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ReencryptReport summarizes one re-encryption batch.
type ReencryptReport struct {
	// Documents counts records written back in this batch.
	Documents int
	// Sealed counts fields now sealed under the new secret.
	Sealed int
	// Failed counts fields left under their old envelope because they could
	// not be opened with the supplied secret.
	Failed int
}

// RecordUseCase serves the five back-office collections: allow-list
// projections for lists, codec-backed reads and writes for details, and the
// batch re-encryption walk behind key rotation.
//
// Every secret parameter is the caller-provisioned domain key for the
// collection's domain; the use case never resolves keys itself and never
// retains them past the call.
type RecordUseCase interface {
	// List retrieves projected summaries for a tenant's records. No key is
	// needed: projections touch safe keys only.
	List(ctx context.Context, collection, tenantID string, offset, limit int) ([]*RecordSummary, error)

	// Get retrieves a record with sensitive fields opened under the secret.
	Get(ctx context.Context, collection, tenantID, recordID string, secret []byte) (*RecordDetail, error)

	// Put creates or replaces a record, sealing sensitive fields under the
	// secret before anything reaches the store.
	Put(ctx context.Context, collection, tenantID, recordID string, data fieldcryptDomain.Record, secret []byte) (*WriteReceipt, error)

	// Patch merge-updates an existing record: open, merge, re-seal.
	// Returns ErrNotFound if the record does not exist.
	Patch(ctx context.Context, collection, tenantID, recordID string, patch fieldcryptDomain.Record, secret []byte) (*WriteReceipt, error)

	// Delete removes a record.
	Delete(ctx context.Context, collection, tenantID, recordID string) error

	// ReencryptBatch re-seals one batch of records last written before the
	// cutoff: open with decryptSecret, seal with encryptSecret. Fields that
	// will not open are left untouched and counted. A zero-document report
	// means the walk is complete. Callers fix the cutoff once and loop.
	ReencryptBatch(ctx context.Context, collection string, decryptSecret, encryptSecret []byte, cutoff time.Time, batchSize int) (*ReencryptReport, error)
}
