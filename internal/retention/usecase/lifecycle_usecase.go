package usecase

import (
	"context"
	"log/slog"
	"time"

	auditDomain "github.com/innwise/fieldvault/internal/audit/domain"
	auditUseCase "github.com/innwise/fieldvault/internal/audit/usecase"
	apperrors "github.com/innwise/fieldvault/internal/errors"
	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
	retentionDomain "github.com/innwise/fieldvault/internal/retention/domain"
	storeDomain "github.com/innwise/fieldvault/internal/store/domain"
)

// personalCollection holds the documents the deletion lifecycle acts on. A
// subject's record id in this collection is their subject id.
const personalCollection = "personal-settings"

// lifecycleUseCase implements LifecycleUseCase.
type lifecycleUseCase struct {
	deletions   DeletionRepository
	documents   DocumentStore
	audit       auditUseCase.AuditUseCase
	gracePeriod time.Duration
	logger      *slog.Logger
}

// SoftDelete starts the deletion lifecycle for a subject. The personal
// settings document is archived in the same pass, so it drops out of the
// records API immediately while staying recoverable until the grace period
// ends.
func (l *lifecycleUseCase) SoftDelete(
	ctx context.Context,
	tenantID, subjectID string,
) (*retentionDomain.DeletionRecord, error) {
	existing, err := l.deletions.GetBySubject(ctx, tenantID, subjectID)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Wrap(err, "failed to check deletion history")
	}
	if existing != nil {
		switch existing.Status {
		case retentionDomain.StatusSoftDeleted:
			return nil, apperrors.Wrap(apperrors.ErrConflict, "deletion already pending for subject")
		case retentionDomain.StatusAnonymized:
			return nil, apperrors.Wrap(apperrors.ErrConflict, "subject already anonymized")
		}
		// A restored record is history; a new deletion starts a new lifecycle.
	}

	record := retentionDomain.NewDeletionRecord(tenantID, subjectID, l.gracePeriod)
	if err := l.deletions.Create(ctx, record); err != nil {
		return nil, apperrors.Wrap(err, "failed to create deletion record")
	}

	path := storeDomain.BuildPath(personalCollection, tenantID, subjectID)
	if err := l.documents.Archive(ctx, path, record.DeletedAt); err != nil {
		// A subject without a personal settings document still gets the
		// deletion lifecycle; there is just nothing to hide.
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Wrap(err, "failed to archive personal settings document")
		}
	}

	l.recordLifecycleEvent(ctx, auditDomain.EventRecordSoftDeleted, tenantID, subjectID, map[string]any{
		"deletion_id":      record.ID.String(),
		"grace_period_end": record.GracePeriodEnd,
	})

	return record, nil
}

// Restore cancels a pending deletion strictly before its grace period ends
// and returns the subject's personal settings document to active use.
func (l *lifecycleUseCase) Restore(
	ctx context.Context,
	tenantID, subjectID string,
) (*retentionDomain.DeletionRecord, error) {
	record, err := l.deletions.GetBySubject(ctx, tenantID, subjectID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "no deletion pending for subject")
		}
		return nil, apperrors.Wrap(err, "failed to load deletion record")
	}

	now := time.Now().UTC()
	if err := record.Restore(now); err != nil {
		return nil, err
	}
	if err := l.deletions.Update(ctx, record); err != nil {
		return nil, apperrors.Wrap(err, "failed to update deletion record")
	}

	path := storeDomain.BuildPath(personalCollection, tenantID, subjectID)
	if err := l.documents.Unarchive(ctx, path); err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Wrap(err, "failed to unarchive personal settings document")
		}
	}

	l.recordLifecycleEvent(ctx, auditDomain.EventRecordRestored, tenantID, subjectID, map[string]any{
		"deletion_id": record.ID.String(),
	})

	return record, nil
}

// recordLifecycleEvent writes one audit entry for a completed lifecycle
// transition. A failed write is logged and swallowed: the transition has
// already been persisted and must still reach the caller.
func (l *lifecycleUseCase) recordLifecycleEvent(
	ctx context.Context,
	eventType auditDomain.EventType,
	tenantID, subjectID string,
	metadata map[string]any,
) {
	err := l.audit.Record(ctx, &auditDomain.Event{
		SubjectID: subjectID,
		TenantID:  tenantID,
		Domain:    fieldcryptDomain.DomainPersonal,
		Type:      eventType,
		Outcome:   auditDomain.OutcomeSuccess,
		Metadata:  metadata,
	})
	if err != nil && l.logger != nil {
		l.logger.Error("failed to record lifecycle audit event",
			slog.String("event", string(eventType)),
			slog.String("tenant_id", tenantID),
			slog.Any("error", err),
		)
	}
}

// NewLifecycleUseCase creates the deletion lifecycle over the deletion
// repository, the document store, and the audit trail. A non-positive grace
// period falls back to the default.
func NewLifecycleUseCase(
	deletions DeletionRepository,
	documents DocumentStore,
	audit auditUseCase.AuditUseCase,
	gracePeriod time.Duration,
	logger *slog.Logger,
) LifecycleUseCase {
	if gracePeriod <= 0 {
		gracePeriod = retentionDomain.DefaultGracePeriod
	}
	return &lifecycleUseCase{
		deletions:   deletions,
		documents:   documents,
		audit:       audit,
		gracePeriod: gracePeriod,
		logger:      logger,
	}
}
