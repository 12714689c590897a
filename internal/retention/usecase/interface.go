// Package usecase implements the retention lifecycle: subject-initiated soft
// deletion with a restore grace period, and the periodic sweep that enforces
// per-domain retention policies over documents, deletion records, and the
// audit trail.
package usecase

import (
	"context"
	"time"

	retentionDomain "github.com/innwise/fieldvault/internal/retention/domain"
	storeDomain "github.com/innwise/fieldvault/internal/store/domain"
)

// DocumentStore defines the document operations the retention layer needs:
// archive marks for soft deletion, expiry scans for the sweep, and the
// read-modify-write behind anonymization.
type DocumentStore interface {
	// Get retrieves a document by its hierarchical path, archived or not.
	// Returns ErrNotFound if no document exists at the path.
	Get(ctx context.Context, path string) (*storeDomain.Document, error)

	// Put inserts or replaces a document.
	Put(ctx context.Context, doc *storeDomain.Document) error

	// Delete removes a document by path.
	Delete(ctx context.Context, path string) error

	// Archive retires a document from active listings while keeping it in
	// storage. Returns ErrNotFound if no document exists at the path.
	Archive(ctx context.Context, path string, archivedAt time.Time) error

	// Unarchive clears a document's archive mark.
	Unarchive(ctx context.Context, path string) error

	// ListExpired retrieves active documents in a collection last written
	// before the cutoff, oldest first. Archived documents are excluded, which
	// makes repeated sweeps over the same data converge.
	ListExpired(ctx context.Context, collection string, cutoff time.Time, limit int) ([]*storeDomain.Document, error)

	// CountExpired counts the documents ListExpired would return.
	CountExpired(ctx context.Context, collection string, cutoff time.Time) (int64, error)
}

// DeletionRepository defines persistence operations for deletion lifecycle
// records.
type DeletionRepository interface {
	// Create inserts a new deletion record.
	Create(ctx context.Context, record *retentionDomain.DeletionRecord) error

	// GetBySubject retrieves the subject's most recent deletion record in the
	// tenant. Returns ErrNotFound when the subject never requested deletion.
	GetBySubject(ctx context.Context, tenantID, subjectID string) (*retentionDomain.DeletionRecord, error)

	// Update persists a record's status transition.
	Update(ctx context.Context, record *retentionDomain.DeletionRecord) error

	// ListDue retrieves soft-deleted records whose grace period ended at or
	// before now, oldest deadline first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*retentionDomain.DeletionRecord, error)

	// CountDue counts the records ListDue would return.
	CountDue(ctx context.Context, now time.Time) (int64, error)
}

// LifecycleUseCase drives subject-initiated deletion and restore. Both
// operations act on the subject's personal settings document: soft deletion
// archives it and restore brings it back, while the deletion record tracks
// the grace period between the two.
type LifecycleUseCase interface {
	// SoftDelete starts the deletion lifecycle for a subject. The personal
	// settings document disappears from the records API immediately but stays
	// recoverable until the grace period ends. Returns ErrConflict when a
	// deletion is already pending or the subject was already anonymized.
	SoftDelete(ctx context.Context, tenantID, subjectID string) (*retentionDomain.DeletionRecord, error)

	// Restore cancels a pending deletion strictly before its grace period
	// ends. Returns ErrNotFound when nothing is pending and
	// ErrGracePeriodExpired when the subject can no longer come back.
	Restore(ctx context.Context, tenantID, subjectID string) (*retentionDomain.DeletionRecord, error)
}

// SweepResult summarizes one retention sweep.
type SweepResult struct {
	// AuditEntriesDeleted counts audit entries removed past their retention
	// expiry.
	AuditEntriesDeleted int64
	// Archived counts documents archived by domain policy.
	Archived int
	// Deleted counts documents removed by domain policy.
	Deleted int
	// Anonymized counts documents scrubbed by domain policy.
	Anonymized int
	// Finalized counts deletion records transitioned to anonymized after
	// their grace period ended.
	Finalized int
	// Failures counts records the sweep could not process. Failed records
	// stay in place and are retried on the next run.
	Failures int
	// DryRun marks a counting pass that changed nothing.
	DryRun bool
}

// SweeperUseCase runs the periodic retention pass. Each sweep expires audit
// entries, applies every domain's retention policy to documents past their
// window, and finalizes deletion records whose grace period has ended. Sweeps
// are idempotent: a second pass over unchanged data finds nothing left to do.
type SweeperUseCase interface {
	// Sweep runs one retention pass. With dryRun it reports what a real pass
	// would do without modifying anything.
	Sweep(ctx context.Context, dryRun bool) (*SweepResult, error)
}
