package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/innwise/fieldvault/internal/audit/domain"
	auditService "github.com/innwise/fieldvault/internal/audit/service"
	apperrors "github.com/innwise/fieldvault/internal/errors"
)

// verifyPageSize is the batch size used when walking entries for
// signature verification.
const verifyPageSize = 500

// auditUseCase implements AuditUseCase.
type auditUseCase struct {
	entryRepo     EntryRepository
	signer        auditService.Signer
	signingSecret []byte
}

// Record persists an audit entry for the event. Generates a UUIDv7
// identifier, masks sensitive metadata, derives the retention expiry from the
// event's category, and signs the entry when a signing secret is configured.
// An empty request id falls back to the correlation id carried by the context.
//
// Timestamps are truncated to microseconds before signing: both TIMESTAMPTZ
// and DATETIME(6) store microsecond precision, and the signature must verify
// against what comes back from the database.
func (a *auditUseCase) Record(ctx context.Context, event *auditDomain.Event) error {
	now := time.Now().UTC().Truncate(time.Microsecond)
	category := event.Type.Category()

	requestID := event.RequestID
	if requestID == "" {
		requestID = auditDomain.RequestIDFrom(ctx)
	}

	entry := &auditDomain.Entry{
		ID:              uuid.Must(uuid.NewV7()),
		RequestID:       requestID,
		SubjectID:       event.SubjectID,
		TenantID:        event.TenantID,
		Domain:          event.Domain,
		Event:           event.Type,
		Category:        category,
		Outcome:         event.Outcome,
		Reason:          event.Reason,
		Metadata:        auditDomain.MaskMetadata(event.Metadata),
		RetentionExpiry: now.Add(category.RetentionPeriod()),
		CreatedAt:       now,
	}

	if len(a.signingSecret) > 0 {
		signature, err := a.signer.Sign(a.signingSecret, entry)
		if err != nil {
			return apperrors.Wrap(err, "failed to sign audit entry")
		}
		entry.Signature = signature
		entry.IsSigned = true
	}

	if err := a.entryRepo.Create(ctx, entry); err != nil {
		return apperrors.Wrap(err, "failed to create audit entry")
	}

	return nil
}

// List retrieves audit entries newest first with pagination and optional
// tenant, category, and time filtering. Returns empty slice if none found.
func (a *auditUseCase) List(
	ctx context.Context,
	offset, limit int,
	tenantID string,
	category auditDomain.Category,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.Entry, error) {
	entries, err := a.entryRepo.List(ctx, offset, limit, tenantID, category, createdAtFrom, createdAtTo)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}

	return entries, nil
}

// DeleteExpired removes entries whose own retention expiry has passed. With
// dryRun it reports the count without deleting.
func (a *auditUseCase) DeleteExpired(ctx context.Context, dryRun bool) (int64, error) {
	count, err := a.entryRepo.DeleteExpired(ctx, time.Now().UTC(), dryRun)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired audit entries")
	}

	return count, nil
}

// VerifyRange walks all entries in the time window in batches and re-verifies
// their signatures. Unsigned entries are counted separately; tampered entries
// are collected by ID.
func (a *auditUseCase) VerifyRange(
	ctx context.Context,
	createdAtFrom, createdAtTo *time.Time,
) (*auditDomain.VerificationResult, error) {
	if len(a.signingSecret) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "audit signing secret not configured")
	}

	result := &auditDomain.VerificationResult{}
	offset := 0

	for {
		entries, err := a.entryRepo.List(ctx, offset, verifyPageSize, "", "", createdAtFrom, createdAtTo)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to list audit entries")
		}
		if len(entries) == 0 {
			break
		}

		for _, entry := range entries {
			result.Checked++

			if !entry.IsSigned {
				result.Unsigned++
				continue
			}

			if err := a.signer.Verify(a.signingSecret, entry); err != nil {
				if apperrors.Is(err, auditDomain.ErrSignatureInvalid) {
					result.Invalid = append(result.Invalid, entry.ID)
					continue
				}
				return nil, apperrors.Wrap(err, "failed to verify audit entry")
			}

			result.Verified++
		}

		offset += len(entries)
	}

	return result, nil
}

// NewAuditUseCase creates a new AuditUseCase. An empty signingSecret disables
// signing: entries are stored unsigned and VerifyRange refuses to run.
func NewAuditUseCase(
	entryRepo EntryRepository,
	signer auditService.Signer,
	signingSecret []byte,
) AuditUseCase {
	return &auditUseCase{
		entryRepo:     entryRepo,
		signer:        signer,
		signingSecret: signingSecret,
	}
}
