// Package domain defines the tenant-scoped document model backing the records API.
package domain

import (
	"fmt"
	"time"

	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
)

// Document is one stored record addressed by a hierarchical path of the form
// collection/tenantId/recordId. Sensitive fields inside Data are envelope
// strings by the time a document reaches the repository; the store never sees
// plaintext sensitive values.
type Document struct {
	// Path is the full hierarchical address and primary key.
	Path string
	// Collection is the first path segment (e.g. "employees").
	Collection string
	// TenantID is the second path segment.
	TenantID string
	// RecordID is the final path segment.
	RecordID string
	// Data is the JSON document body.
	Data fieldcryptDomain.Record
	// ArchivedAt marks the document as retired from the active dataset. An
	// archived document stays in storage for statutory retention but is
	// invisible to the records API until the mark is cleared.
	ArchivedAt *time.Time
	// CreatedAt is the initial write time in UTC.
	CreatedAt time.Time
	// UpdatedAt is the last write time in UTC.
	UpdatedAt time.Time
}

// BuildPath assembles the hierarchical address for a record.
func BuildPath(collection, tenantID, recordID string) string {
	return fmt.Sprintf("%s/%s/%s", collection, tenantID, recordID)
}

// NewDocument builds a document for the given coordinates with both
// timestamps set to now.
func NewDocument(collection, tenantID, recordID string, data fieldcryptDomain.Record) *Document {
	now := time.Now().UTC()
	return &Document{
		Path:       BuildPath(collection, tenantID, recordID),
		Collection: collection,
		TenantID:   tenantID,
		RecordID:   recordID,
		Data:       data,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
