package usecase

import (
	"context"
	"time"

	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
	"github.com/innwise/fieldvault/internal/metrics"
)

// recordUseCaseWithMetrics decorates RecordUseCase with metrics instrumentation.
type recordUseCaseWithMetrics struct {
	next    RecordUseCase
	metrics metrics.BusinessMetrics
}

// NewRecordUseCaseWithMetrics wraps a RecordUseCase with metrics recording.
func NewRecordUseCaseWithMetrics(useCase RecordUseCase, m metrics.BusinessMetrics) RecordUseCase {
	return &recordUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// domainLabel resolves a collection to its record domain for the metric
// domain label. Unknown collections are labeled as such instead of failing
// the instrumented call.
func domainLabel(collection string) string {
	policy, err := fieldcryptDomain.PolicyForCollection(collection)
	if err != nil {
		return "unknown"
	}
	return string(policy.Domain)
}

// List records metrics for list projection operations.
func (r *recordUseCaseWithMetrics) List(
	ctx context.Context,
	collection, tenantID string,
	offset, limit int,
) ([]*RecordSummary, error) {
	start := time.Now()
	summaries, err := r.next.List(ctx, collection, tenantID, offset, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, domainLabel(collection), "record_list", status)
	r.metrics.RecordDuration(ctx, domainLabel(collection), "record_list", time.Since(start), status)

	return summaries, err
}

// Get records metrics for record detail reads.
func (r *recordUseCaseWithMetrics) Get(
	ctx context.Context,
	collection, tenantID, recordID string,
	secret []byte,
) (*RecordDetail, error) {
	start := time.Now()
	detail, err := r.next.Get(ctx, collection, tenantID, recordID, secret)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, domainLabel(collection), "record_get", status)
	r.metrics.RecordDuration(ctx, domainLabel(collection), "record_get", time.Since(start), status)

	return detail, err
}

// Put records metrics for record create/replace operations.
func (r *recordUseCaseWithMetrics) Put(
	ctx context.Context,
	collection, tenantID, recordID string,
	data fieldcryptDomain.Record,
	secret []byte,
) (*WriteReceipt, error) {
	start := time.Now()
	rcpt, err := r.next.Put(ctx, collection, tenantID, recordID, data, secret)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, domainLabel(collection), "record_put", status)
	r.metrics.RecordDuration(ctx, domainLabel(collection), "record_put", time.Since(start), status)

	return rcpt, err
}

// Patch records metrics for merge update operations.
func (r *recordUseCaseWithMetrics) Patch(
	ctx context.Context,
	collection, tenantID, recordID string,
	patch fieldcryptDomain.Record,
	secret []byte,
) (*WriteReceipt, error) {
	start := time.Now()
	rcpt, err := r.next.Patch(ctx, collection, tenantID, recordID, patch, secret)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, domainLabel(collection), "record_patch", status)
	r.metrics.RecordDuration(ctx, domainLabel(collection), "record_patch", time.Since(start), status)

	return rcpt, err
}

// Delete records metrics for record deletion operations.
func (r *recordUseCaseWithMetrics) Delete(
	ctx context.Context,
	collection, tenantID, recordID string,
) error {
	start := time.Now()
	err := r.next.Delete(ctx, collection, tenantID, recordID)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, domainLabel(collection), "record_delete", status)
	r.metrics.RecordDuration(ctx, domainLabel(collection), "record_delete", time.Since(start), status)

	return err
}

// ReencryptBatch records metrics for re-encryption batches.
func (r *recordUseCaseWithMetrics) ReencryptBatch(
	ctx context.Context,
	collection string,
	decryptSecret, encryptSecret []byte,
	cutoff time.Time,
	batchSize int,
) (*ReencryptReport, error) {
	start := time.Now()
	report, err := r.next.ReencryptBatch(ctx, collection, decryptSecret, encryptSecret, cutoff, batchSize)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, domainLabel(collection), "record_reencrypt", status)
	r.metrics.RecordDuration(ctx, domainLabel(collection), "record_reencrypt", time.Since(start), status)

	return report, err
}
