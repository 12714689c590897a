package usecase

import (
	"context"
	"time"

	"github.com/innwise/fieldvault/internal/metrics"
	retentionDomain "github.com/innwise/fieldvault/internal/retention/domain"
)

// lifecycleUseCaseWithMetrics decorates LifecycleUseCase with metrics
// instrumentation.
type lifecycleUseCaseWithMetrics struct {
	next    LifecycleUseCase
	metrics metrics.BusinessMetrics
}

// NewLifecycleUseCaseWithMetrics wraps a LifecycleUseCase with metrics
// recording.
func NewLifecycleUseCaseWithMetrics(useCase LifecycleUseCase, m metrics.BusinessMetrics) LifecycleUseCase {
	return &lifecycleUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// SoftDelete records metrics for deletion requests.
func (l *lifecycleUseCaseWithMetrics) SoftDelete(
	ctx context.Context,
	tenantID, subjectID string,
) (*retentionDomain.DeletionRecord, error) {
	start := time.Now()
	record, err := l.next.SoftDelete(ctx, tenantID, subjectID)

	status := "success"
	if err != nil {
		status = "error"
	}

	l.metrics.RecordOperation(ctx, "retention", "retention_soft_delete", status)
	l.metrics.RecordDuration(ctx, "retention", "retention_soft_delete", time.Since(start), status)

	return record, err
}

// Restore records metrics for restore requests.
func (l *lifecycleUseCaseWithMetrics) Restore(
	ctx context.Context,
	tenantID, subjectID string,
) (*retentionDomain.DeletionRecord, error) {
	start := time.Now()
	record, err := l.next.Restore(ctx, tenantID, subjectID)

	status := "success"
	if err != nil {
		status = "error"
	}

	l.metrics.RecordOperation(ctx, "retention", "retention_restore", status)
	l.metrics.RecordDuration(ctx, "retention", "retention_restore", time.Since(start), status)

	return record, err
}

// sweeperUseCaseWithMetrics decorates SweeperUseCase with metrics
// instrumentation.
type sweeperUseCaseWithMetrics struct {
	next    SweeperUseCase
	metrics metrics.BusinessMetrics
}

// NewSweeperUseCaseWithMetrics wraps a SweeperUseCase with metrics recording.
func NewSweeperUseCaseWithMetrics(useCase SweeperUseCase, m metrics.BusinessMetrics) SweeperUseCase {
	return &sweeperUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Sweep records metrics for retention passes.
func (s *sweeperUseCaseWithMetrics) Sweep(ctx context.Context, dryRun bool) (*SweepResult, error) {
	start := time.Now()
	result, err := s.next.Sweep(ctx, dryRun)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "retention", "retention_sweep", status)
	s.metrics.RecordDuration(ctx, "retention", "retention_sweep", time.Since(start), status)

	return result, err
}
