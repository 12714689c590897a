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

// defaultSweepBatchSize bounds how many documents or deletion records one
// batch touches.
const defaultSweepBatchSize = 500

// anonymizedAtKey marks a document whose identifying paths have been
// scrubbed. Marked documents are skipped by later anonymization passes.
const anonymizedAtKey = "anonymizedAt"

// sweeperSubject is the subject id stamped on sweep summary audit entries.
const sweeperSubject = "retention-sweeper"

// sweeperUseCase implements SweeperUseCase.
type sweeperUseCase struct {
	documents DocumentStore
	deletions DeletionRepository
	audit     auditUseCase.AuditUseCase
	batchSize int
	logger    *slog.Logger
}

// Sweep runs one retention pass: expire audit entries, apply every domain's
// retention policy to documents past their window, finalize deletion records
// whose grace period has ended. Failures on individual documents or records
// are counted and left for the next run; failures listing or counting abort
// the sweep.
func (s *sweeperUseCase) Sweep(ctx context.Context, dryRun bool) (*SweepResult, error) {
	now := time.Now().UTC()
	result := &SweepResult{DryRun: dryRun}

	deleted, err := s.audit.DeleteExpired(ctx, dryRun)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to expire audit entries")
	}
	result.AuditEntriesDeleted = deleted

	for _, policy := range retentionDomain.Policies() {
		if err := s.applyPolicy(ctx, policy, now, dryRun, result); err != nil {
			return nil, err
		}
	}

	if err := s.finalizeDueDeletions(ctx, now, dryRun, result); err != nil {
		return nil, err
	}

	if !dryRun {
		s.recordSweepCompleted(ctx, result)
	}

	return result, nil
}

// applyPolicy applies one domain's retention action to every collection in
// the domain.
func (s *sweeperUseCase) applyPolicy(
	ctx context.Context,
	policy *retentionDomain.Policy,
	now time.Time,
	dryRun bool,
	result *SweepResult,
) error {
	cutoff := now.Add(-policy.Window)

	for _, fieldPolicy := range fieldcryptDomain.PoliciesForDomain(policy.Domain) {
		if dryRun {
			count, err := s.documents.CountExpired(ctx, fieldPolicy.Collection, cutoff)
			if err != nil {
				return apperrors.Wrapf(err, "failed to count expired documents in %s", fieldPolicy.Collection)
			}
			addActionCount(result, policy.Action, int(count))
			continue
		}

		if err := s.sweepCollection(ctx, policy, fieldPolicy, cutoff, now, result); err != nil {
			return err
		}
	}

	return nil
}

// sweepCollection walks one collection's expired documents in batches. Every
// applied action removes its document from the expired set, so repeated
// ListExpired calls page through the backlog; a batch where nothing was
// applied ends the walk instead of rescanning the same documents.
func (s *sweeperUseCase) sweepCollection(
	ctx context.Context,
	policy *retentionDomain.Policy,
	fieldPolicy *fieldcryptDomain.FieldPolicy,
	cutoff, now time.Time,
	result *SweepResult,
) error {
	for {
		docs, err := s.documents.ListExpired(ctx, fieldPolicy.Collection, cutoff, s.batchSize)
		if err != nil {
			return apperrors.Wrapf(err, "failed to list expired documents in %s", fieldPolicy.Collection)
		}
		if len(docs) == 0 {
			return nil
		}

		acted := 0
		for _, doc := range docs {
			applied, err := s.applyAction(ctx, policy, fieldPolicy, doc, now)
			if err != nil {
				result.Failures++
				s.warn("retention action failed",
					slog.String("collection", fieldPolicy.Collection),
					slog.String("path", doc.Path),
					slog.String("action", string(policy.Action)),
					slog.Any("error", err),
				)
				continue
			}
			if applied {
				acted++
				addActionCount(result, policy.Action, 1)
			}
		}
		if acted == 0 {
			return nil
		}
	}
}

// applyAction applies the policy's action to one document. Returns false
// without error for documents that need no action.
func (s *sweeperUseCase) applyAction(
	ctx context.Context,
	policy *retentionDomain.Policy,
	fieldPolicy *fieldcryptDomain.FieldPolicy,
	doc *storeDomain.Document,
	now time.Time,
) (bool, error) {
	switch policy.Action {
	case retentionDomain.ActionArchive:
		if err := s.documents.Archive(ctx, doc.Path, now); err != nil {
			return false, err
		}
	case retentionDomain.ActionDelete:
		if err := s.documents.Delete(ctx, doc.Path); err != nil {
			return false, err
		}
	case retentionDomain.ActionAnonymize:
		if _, marked := doc.Data.Get(anonymizedAtKey); marked {
			return false, nil
		}
		if err := s.anonymizeDocument(ctx, doc, fieldPolicy, now); err != nil {
			return false, err
		}
	default:
		return false, apperrors.Wrapf(apperrors.ErrConfiguration, "unknown retention action %q", policy.Action)
	}
	return true, nil
}

// anonymizeDocument scrubs the collection's identifying paths and writes the
// document back marked and freshly timestamped, taking it out of the expired
// set until a full window passes again.
func (s *sweeperUseCase) anonymizeDocument(
	ctx context.Context,
	doc *storeDomain.Document,
	fieldPolicy *fieldcryptDomain.FieldPolicy,
	now time.Time,
) error {
	for _, path := range fieldPolicy.IdentifyingPaths {
		doc.Data.Delete(path)
	}
	if err := doc.Data.Set(anonymizedAtKey, now.Format(time.RFC3339)); err != nil {
		return err
	}
	doc.UpdatedAt = now
	return s.documents.Put(ctx, doc)
}

// finalizeDueDeletions anonymizes subjects whose grace period has ended. The
// personal settings document is scrubbed first and the record transitioned
// second, so a failure in between is repaired by the next sweep: rescrubbing
// an already-scrubbed document changes nothing.
func (s *sweeperUseCase) finalizeDueDeletions(
	ctx context.Context,
	now time.Time,
	dryRun bool,
	result *SweepResult,
) error {
	if dryRun {
		count, err := s.deletions.CountDue(ctx, now)
		if err != nil {
			return apperrors.Wrap(err, "failed to count due deletion records")
		}
		result.Finalized += int(count)
		return nil
	}

	fieldPolicy, err := fieldcryptDomain.PolicyForCollection(personalCollection)
	if err != nil {
		return err
	}

	for {
		records, err := s.deletions.ListDue(ctx, now, s.batchSize)
		if err != nil {
			return apperrors.Wrap(err, "failed to list due deletion records")
		}
		if len(records) == 0 {
			return nil
		}

		finalized := 0
		for _, record := range records {
			if err := s.finalizeRecord(ctx, record, fieldPolicy, now); err != nil {
				result.Failures++
				s.warn("failed to finalize deletion",
					slog.String("tenant_id", record.TenantID),
					slog.String("deletion_id", record.ID.String()),
					slog.Any("error", err),
				)
				continue
			}
			finalized++
			result.Finalized++
		}
		if finalized == 0 {
			return nil
		}
	}
}

// finalizeRecord scrubs one due subject's personal settings document and
// transitions the deletion record to its terminal state.
func (s *sweeperUseCase) finalizeRecord(
	ctx context.Context,
	record *retentionDomain.DeletionRecord,
	fieldPolicy *fieldcryptDomain.FieldPolicy,
	now time.Time,
) error {
	path := storeDomain.BuildPath(personalCollection, record.TenantID, record.SubjectID)

	doc, err := s.documents.Get(ctx, path)
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		// Nothing stored for the subject; the record transition alone
		// completes the deletion.
	case err != nil:
		return apperrors.Wrap(err, "failed to load personal settings document")
	default:
		if err := s.anonymizeDocument(ctx, doc, fieldPolicy, now); err != nil {
			return apperrors.Wrap(err, "failed to anonymize personal settings document")
		}
	}

	record.Anonymize(now)
	if err := s.deletions.Update(ctx, record); err != nil {
		return apperrors.Wrap(err, "failed to update deletion record")
	}

	s.recordAnonymized(ctx, record)
	return nil
}

// recordAnonymized writes the per-subject lifecycle entry. A failed write is
// logged and swallowed; the anonymization itself has already been persisted.
func (s *sweeperUseCase) recordAnonymized(ctx context.Context, record *retentionDomain.DeletionRecord) {
	err := s.audit.Record(ctx, &auditDomain.Event{
		SubjectID: record.SubjectID,
		TenantID:  record.TenantID,
		Domain:    fieldcryptDomain.DomainPersonal,
		Type:      auditDomain.EventRecordAnonymized,
		Outcome:   auditDomain.OutcomeSuccess,
		Metadata: map[string]any{
			"deletion_id": record.ID.String(),
		},
	})
	if err != nil && s.logger != nil {
		s.logger.Error("failed to record anonymization audit event",
			slog.String("tenant_id", record.TenantID),
			slog.Any("error", err),
		)
	}
}

// recordSweepCompleted writes the sweep summary entry.
func (s *sweeperUseCase) recordSweepCompleted(ctx context.Context, result *SweepResult) {
	outcome := auditDomain.OutcomeSuccess
	if result.Failures > 0 {
		outcome = auditDomain.OutcomeFailure
	}

	err := s.audit.Record(ctx, &auditDomain.Event{
		SubjectID: sweeperSubject,
		Type:      auditDomain.EventRetentionSweepCompleted,
		Outcome:   outcome,
		Metadata: map[string]any{
			"audit_entries_deleted": result.AuditEntriesDeleted,
			"archived":              result.Archived,
			"deleted":               result.Deleted,
			"anonymized":            result.Anonymized,
			"finalized":             result.Finalized,
			"failures":              result.Failures,
		},
	})
	if err != nil && s.logger != nil {
		s.logger.Error("failed to record sweep audit event", slog.Any("error", err))
	}
}

func (s *sweeperUseCase) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

// addActionCount attributes applied actions to the counter for the policy's
// action.
func addActionCount(result *SweepResult, action retentionDomain.Action, n int) {
	switch action {
	case retentionDomain.ActionArchive:
		result.Archived += n
	case retentionDomain.ActionDelete:
		result.Deleted += n
	case retentionDomain.ActionAnonymize:
		result.Anonymized += n
	}
}

// NewSweeperUseCase creates the retention sweeper over the document store,
// the deletion repository, and the audit trail. A non-positive batch size
// falls back to the default.
func NewSweeperUseCase(
	documents DocumentStore,
	deletions DeletionRepository,
	audit auditUseCase.AuditUseCase,
	batchSize int,
	logger *slog.Logger,
) SweeperUseCase {
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}
	return &sweeperUseCase{
		documents: documents,
		deletions: deletions,
		audit:     audit,
		batchSize: batchSize,
		logger:    logger,
	}
}
