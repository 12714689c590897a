// Package domain defines the append-only audit entry model. Entries are
// created once, read many times, and removed only by the retention sweeper
// after their own retention expiry has passed. No update operation exists
// anywhere in this context.
package domain

import (
	"time"

	"github.com/google/uuid"

	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
)

// EventType identifies the audited action.
type EventType string

const (
	EventRecordListed   EventType = "record_listed"
	EventRecordViewed   EventType = "record_viewed"
	EventRecordWritten  EventType = "record_written"
	EventRecordDeleted  EventType = "record_deleted"
	EventRecordExported EventType = "record_exported"
	EventRoleGranted    EventType = "role_granted"
	EventRoleRevoked    EventType = "role_revoked"

	EventAuthenticationFailed EventType = "authentication_failed"
	EventPermissionDenied     EventType = "permission_denied"
	EventStepUpRejected       EventType = "step_up_rejected"
	EventKeyResolutionFailed  EventType = "key_resolution_failed"

	EventRecordSoftDeleted       EventType = "record_soft_deleted"
	EventRecordRestored          EventType = "record_restored"
	EventRecordAnonymized        EventType = "record_anonymized"
	EventRetentionSweepCompleted EventType = "retention_sweep_completed"
)

// Category groups event types for retention purposes. The retention window
// is fixed per category and stamped onto the entry at write time.
type Category string

const (
	CategoryAccess    Category = "access"
	CategorySecurity  Category = "security"
	CategoryLifecycle Category = "lifecycle"
)

// Retention windows per category. Security events outlive routine access
// records; lifecycle events carry the longest statutory window.
const (
	accessRetention    = 180 * 24 * time.Hour
	securityRetention  = 2 * 365 * 24 * time.Hour
	lifecycleRetention = 7 * 365 * 24 * time.Hour
)

// Category maps an event type to its retention category. Unrecognized event
// types fall into the access category, the shortest window.
func (e EventType) Category() Category {
	switch e {
	case EventAuthenticationFailed, EventPermissionDenied, EventStepUpRejected, EventKeyResolutionFailed:
		return CategorySecurity
	case EventRecordSoftDeleted, EventRecordRestored, EventRecordAnonymized, EventRetentionSweepCompleted:
		return CategoryLifecycle
	default:
		return CategoryAccess
	}
}

// RetentionPeriod returns how long entries in this category are kept.
func (c Category) RetentionPeriod() time.Duration {
	switch c {
	case CategorySecurity:
		return securityRetention
	case CategoryLifecycle:
		return lifecycleRetention
	default:
		return accessRetention
	}
}

// Outcome records how the audited operation ended.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeDenied  Outcome = "denied"
	OutcomeFailure Outcome = "failure"
)

// Event is the input for recording an audit entry. The use case fills in
// identity, category, retention expiry, and signature.
type Event struct {
	RequestID string
	SubjectID string
	TenantID  string
	Domain    fieldcryptDomain.RecordDomain
	Type      EventType
	Outcome   Outcome
	Reason    string
	Metadata  map[string]any
}

// Entry is a persisted audit record. Captures who did what to which tenant's
// data and how it ended, plus the tamper-evidence signature and the
// write-time retention expiry the sweeper acts on.
type Entry struct {
	ID              uuid.UUID
	RequestID       string
	SubjectID       string
	TenantID        string
	Domain          fieldcryptDomain.RecordDomain
	Event           EventType
	Category        Category
	Outcome         Outcome
	Reason          string
	Metadata        map[string]any
	Signature       []byte
	IsSigned        bool
	RetentionExpiry time.Time
	CreatedAt       time.Time
}

// VerificationResult summarizes a signature verification pass over a range
// of entries.
type VerificationResult struct {
	Checked  int
	Verified int
	Unsigned int
	Invalid  []uuid.UUID
}
