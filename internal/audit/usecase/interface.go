// Package usecase implements business logic orchestration for audit logging.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/innwise/fieldvault/internal/audit/domain"
)

// EntryRepository defines persistence operations for audit entries. The store
// is append-only, so no update method exists.
type EntryRepository interface {
	// Create inserts a new audit entry.
	Create(ctx context.Context, entry *auditDomain.Entry) error

	// Get retrieves a single entry by ID.
	Get(ctx context.Context, id uuid.UUID) (*auditDomain.Entry, error)

	// List retrieves entries newest first with pagination and optional
	// filtering. Empty tenantID and category mean no filter; nil time
	// pointers mean no bound.
	List(ctx context.Context, offset, limit int, tenantID string, category auditDomain.Category, createdAtFrom, createdAtTo *time.Time) ([]*auditDomain.Entry, error)

	// DeleteExpired removes entries whose retention_expiry predates now.
	// With dryRun it only counts.
	DeleteExpired(ctx context.Context, now time.Time, dryRun bool) (int64, error)
}

// AuditUseCase records, queries, expires, and verifies audit entries.
type AuditUseCase interface {
	// Record persists an audit entry for the event. Sensitive metadata is
	// masked, the retention expiry is stamped from the event's category, and
	// the entry is signed when a signing secret is configured.
	Record(ctx context.Context, event *auditDomain.Event) error

	// List retrieves entries newest first with pagination and optional
	// tenant, category, and time filtering.
	List(ctx context.Context, offset, limit int, tenantID string, category auditDomain.Category, createdAtFrom, createdAtTo *time.Time) ([]*auditDomain.Entry, error)

	// DeleteExpired removes entries past their retention expiry. Called by
	// the retention sweeper; there is no ad-hoc delete path.
	DeleteExpired(ctx context.Context, dryRun bool) (int64, error)

	// VerifyRange re-verifies signatures for all entries in the given time
	// window and reports valid, unsigned, and tampered counts.
	VerifyRange(ctx context.Context, createdAtFrom, createdAtTo *time.Time) (*auditDomain.VerificationResult, error)
}
