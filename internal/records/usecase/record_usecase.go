package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/innwise/fieldvault/internal/errors"
	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
	fieldcryptService "github.com/innwise/fieldvault/internal/fieldcrypt/service"
	storeDomain "github.com/innwise/fieldvault/internal/store/domain"
)

// recordUseCase implements the RecordUseCase interface.
//
// Two codecs are held on purpose. The request codec runs with the configured
// failure mode. Re-encryption always runs the fail-open codec: an envelope
// that will not open with the supplied old version has to survive intact for
// a later pass with the right version, not be redacted.
type recordUseCase struct {
	docRepo DocumentRepository
	codec   *fieldcryptService.Codec
	reseal  *fieldcryptService.Codec
}

// List retrieves projected summaries for a tenant's records.
func (r *recordUseCase) List(
	ctx context.Context,
	collection, tenantID string,
	offset, limit int,
) ([]*RecordSummary, error) {
	policy, err := fieldcryptDomain.PolicyForCollection(collection)
	if err != nil {
		return nil, err
	}
	if err := requireCoordinates(collection, tenantID); err != nil {
		return nil, err
	}

	docs, err := r.docRepo.List(ctx, collection, tenantID, offset, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]*RecordSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, &RecordSummary{
			RecordID:  doc.RecordID,
			Data:      fieldcryptDomain.Project(doc.Data, policy),
			UpdatedAt: doc.UpdatedAt,
		})
	}

	return summaries, nil
}

// Get retrieves a record with sensitive fields opened under the secret.
// Archived documents read as absent.
func (r *recordUseCase) Get(
	ctx context.Context,
	collection, tenantID, recordID string,
	secret []byte,
) (*RecordDetail, error) {
	policy, err := fieldcryptDomain.PolicyForCollection(collection)
	if err != nil {
		return nil, err
	}
	if err := requireCoordinates(collection, tenantID, recordID); err != nil {
		return nil, err
	}

	doc, err := r.docRepo.Get(ctx, storeDomain.BuildPath(collection, tenantID, recordID))
	if err != nil {
		return nil, err
	}
	if doc.ArchivedAt != nil {
		return nil, apperrors.ErrNotFound
	}

	report, err := r.codec.DecryptFields(doc.Data, policy, secret)
	if err != nil {
		return nil, err
	}

	return &RecordDetail{
		Collection: doc.Collection,
		TenantID:   doc.TenantID,
		RecordID:   doc.RecordID,
		Data:       doc.Data,
		Degraded:   report.Degraded,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}, nil
}

// Put creates or replaces a record. Sensitive fields are sealed before the
// document reaches the repository; a record whose sensitive fields could not
// all be sealed or redacted is never persisted.
func (r *recordUseCase) Put(
	ctx context.Context,
	collection, tenantID, recordID string,
	data fieldcryptDomain.Record,
	secret []byte,
) (*WriteReceipt, error) {
	policy, err := fieldcryptDomain.PolicyForCollection(collection)
	if err != nil {
		return nil, err
	}
	if err := requireCoordinates(collection, tenantID, recordID); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "record body is required")
	}

	report, err := r.codec.EncryptFields(data, policy, secret)
	if err != nil {
		return nil, err
	}
	if err := refuseUnsealedPlaintext(report); err != nil {
		return nil, err
	}

	doc := storeDomain.NewDocument(collection, tenantID, recordID, data)
	if err := r.docRepo.Put(ctx, doc); err != nil {
		return nil, err
	}

	return receipt(doc, report.Degraded), nil
}

// Patch merge-updates an existing record: open, merge, re-seal.
func (r *recordUseCase) Patch(
	ctx context.Context,
	collection, tenantID, recordID string,
	patch fieldcryptDomain.Record,
	secret []byte,
) (*WriteReceipt, error) {
	policy, err := fieldcryptDomain.PolicyForCollection(collection)
	if err != nil {
		return nil, err
	}
	if err := requireCoordinates(collection, tenantID, recordID); err != nil {
		return nil, err
	}
	if patch == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "patch body is required")
	}

	doc, err := r.docRepo.Get(ctx, storeDomain.BuildPath(collection, tenantID, recordID))
	if err != nil {
		return nil, err
	}
	if doc.ArchivedAt != nil {
		return nil, apperrors.ErrNotFound
	}

	if _, err := r.codec.DecryptFields(doc.Data, policy, secret); err != nil {
		return nil, err
	}

	doc.Data.Merge(patch)

	report, err := r.codec.EncryptFields(doc.Data, policy, secret)
	if err != nil {
		return nil, err
	}
	if err := refuseUnsealedPlaintext(report); err != nil {
		return nil, err
	}

	doc.UpdatedAt = time.Now().UTC()
	if err := r.docRepo.Put(ctx, doc); err != nil {
		return nil, err
	}

	return receipt(doc, report.Degraded), nil
}

// Delete removes a record.
func (r *recordUseCase) Delete(ctx context.Context, collection, tenantID, recordID string) error {
	if _, err := fieldcryptDomain.PolicyForCollection(collection); err != nil {
		return err
	}
	if err := requireCoordinates(collection, tenantID, recordID); err != nil {
		return err
	}

	return r.docRepo.Delete(ctx, storeDomain.BuildPath(collection, tenantID, recordID))
}

// ReencryptBatch re-seals one batch of records last written before the
// cutoff. Every visited record is written back with a fresh updated_at, so
// it falls past the cutoff and out of later batches; the walk terminates
// without offset bookkeeping.
func (r *recordUseCase) ReencryptBatch(
	ctx context.Context,
	collection string,
	decryptSecret, encryptSecret []byte,
	cutoff time.Time,
	batchSize int,
) (*ReencryptReport, error) {
	policy, err := fieldcryptDomain.PolicyForCollection(collection)
	if err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "batch size must be positive")
	}

	docs, err := r.docRepo.ListOlderThan(ctx, collection, cutoff, batchSize)
	if err != nil {
		return nil, err
	}

	report := &ReencryptReport{}
	for _, doc := range docs {
		decReport, err := r.reseal.DecryptFields(doc.Data, policy, decryptSecret)
		if err != nil {
			return nil, err
		}

		encReport, err := r.reseal.EncryptFields(doc.Data, policy, encryptSecret)
		if err != nil {
			return nil, err
		}

		doc.UpdatedAt = time.Now().UTC()
		if err := r.docRepo.Put(ctx, doc); err != nil {
			return nil, apperrors.Wrapf(err, "failed to store re-encrypted record %s", doc.Path)
		}

		report.Documents++
		report.Sealed += encReport.Encrypted
		report.Failed += len(decReport.FailedPaths)
	}

	return report, nil
}

// requireCoordinates rejects blank path segments.
func requireCoordinates(segments ...string) error {
	for _, segment := range segments {
		if strings.TrimSpace(segment) == "" {
			return apperrors.Wrap(apperrors.ErrInvalidInput, "record coordinates cannot be blank")
		}
	}
	return nil
}

// refuseUnsealedPlaintext blocks the write path when sealing failed without
// redaction: with the fail-open codec the failing fields are still plaintext
// in the record, and the store must never see sensitive plaintext.
func refuseUnsealedPlaintext(report *fieldcryptService.Report) error {
	if report.Failed() && !report.Degraded {
		return apperrors.Wrapf(
			apperrors.ErrIntegrity,
			"refusing to store record with %d unsealed sensitive fields",
			len(report.FailedPaths),
		)
	}
	return nil
}

// receipt builds the write acknowledgement for a stored document.
func receipt(doc *storeDomain.Document, degraded bool) *WriteReceipt {
	return &WriteReceipt{
		Collection: doc.Collection,
		TenantID:   doc.TenantID,
		RecordID:   doc.RecordID,
		Degraded:   degraded,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
}

// NewRecordUseCase creates a RecordUseCase. The request codec runs with the
// given failure mode; the re-encryption codec is always fail-open.
func NewRecordUseCase(
	docRepo DocumentRepository,
	sealer fieldcryptService.EnvelopeSealer,
	mode fieldcryptService.FailureMode,
	logger *slog.Logger,
) (RecordUseCase, error) {
	codec, err := fieldcryptService.NewCodec(sealer, mode, logger)
	if err != nil {
		return nil, err
	}

	reseal, err := fieldcryptService.NewCodec(sealer, fieldcryptService.FailOpen, logger)
	if err != nil {
		return nil, err
	}

	return &recordUseCase{
		docRepo: docRepo,
		codec:   codec,
		reseal:  reseal,
	}, nil
}
