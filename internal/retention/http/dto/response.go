// Package dto provides data transfer objects for retention lifecycle responses.
package dto

import (
	"time"

	retentionDomain "github.com/innwise/fieldvault/internal/retention/domain"
)

// DeletionResponse acknowledges a lifecycle transition. It carries the
// deletion coordinates and the restore deadline, never record data.
type DeletionResponse struct {
	DeletionID     string    `json:"deletion_id"`
	TenantID       string    `json:"tenant_id"`
	SubjectID      string    `json:"subject_id"`
	Status         string    `json:"status"`
	DeletedAt      time.Time `json:"deleted_at"`
	GracePeriodEnd time.Time `json:"grace_period_end"`
}

// MapDeletionToResponse converts a deletion record to an API response.
func MapDeletionToResponse(record *retentionDomain.DeletionRecord) DeletionResponse {
	return DeletionResponse{
		DeletionID:     record.ID.String(),
		TenantID:       record.TenantID,
		SubjectID:      record.SubjectID,
		Status:         string(record.Status),
		DeletedAt:      record.DeletedAt,
		GracePeriodEnd: record.GracePeriodEnd,
	}
}
