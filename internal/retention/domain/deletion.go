package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/innwise/fieldvault/internal/errors"
)

// Status is a deletion record's lifecycle state.
type Status string

const (
	// StatusSoftDeleted means the subject asked for deletion and the grace
	// period is running.
	StatusSoftDeleted Status = "soft_deleted"
	// StatusRestored means the subject came back before the grace period
	// ended. The record stays as history; a later deletion starts a new one.
	StatusRestored Status = "restored"
	// StatusAnonymized is terminal: the subject's identifying data is gone
	// and no transition leads out of it.
	StatusAnonymized Status = "anonymized"
)

// DefaultGracePeriod is how long a soft-deleted subject can change their mind.
const DefaultGracePeriod = 30 * 24 * time.Hour

// ErrGracePeriodExpired rejects a restore attempted at or past the grace
// period end, and any restore of an anonymized subject.
var ErrGracePeriodExpired = apperrors.Wrap(apperrors.ErrInvalidInput, "grace period expired")

// DeletionRecord tracks one subject's deletion lifecycle in a tenant.
// Transitions: soft_deleted → restored strictly before GracePeriodEnd, or
// soft_deleted → anonymized by the retention sweep at or after it.
type DeletionRecord struct {
	ID             uuid.UUID
	TenantID       string
	SubjectID      string
	Status         Status
	DeletedAt      time.Time
	GracePeriodEnd time.Time
	AnonymizedAt   *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewDeletionRecord starts a deletion lifecycle: soft deleted now, with the
// grace period ahead.
func NewDeletionRecord(tenantID, subjectID string, gracePeriod time.Duration) *DeletionRecord {
	now := time.Now().UTC()
	return &DeletionRecord{
		ID:             uuid.Must(uuid.NewV7()),
		TenantID:       tenantID,
		SubjectID:      subjectID,
		Status:         StatusSoftDeleted,
		DeletedAt:      now,
		GracePeriodEnd: now.Add(gracePeriod),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Restorable reports whether the subject can still come back at the given
// time. The boundary is strict: exactly at GracePeriodEnd is too late.
func (d *DeletionRecord) Restorable(now time.Time) bool {
	return d.Status == StatusSoftDeleted && now.Before(d.GracePeriodEnd)
}

// Due reports whether the grace period has ended for a still-pending record,
// making it ready for the sweep to finalize.
func (d *DeletionRecord) Due(now time.Time) bool {
	return d.Status == StatusSoftDeleted && !now.Before(d.GracePeriodEnd)
}

// Restore transitions a pending deletion back to active use. Anonymized
// records and records at or past their grace period end return
// ErrGracePeriodExpired; an already-restored record has nothing pending and
// returns ErrNotFound.
func (d *DeletionRecord) Restore(now time.Time) error {
	switch d.Status {
	case StatusAnonymized:
		return ErrGracePeriodExpired
	case StatusRestored:
		return apperrors.Wrap(apperrors.ErrNotFound, "no deletion pending for subject")
	}
	if !now.Before(d.GracePeriodEnd) {
		return ErrGracePeriodExpired
	}

	d.Status = StatusRestored
	d.UpdatedAt = now
	return nil
}

// Anonymize marks the terminal state after the subject's documents have been
// scrubbed.
func (d *DeletionRecord) Anonymize(now time.Time) {
	d.Status = StatusAnonymized
	d.AnonymizedAt = &now
	d.UpdatedAt = now
}
