// Package dto provides data transfer objects for audit API responses.
package dto

import (
	"time"

	auditDomain "github.com/innwise/fieldvault/internal/audit/domain"
)

// EntryResponse represents one audit entry. The signature bytes stay
// internal; only the signed flag is exposed.
type EntryResponse struct {
	ID              string         `json:"id"`
	RequestID       string         `json:"request_id,omitempty"`
	SubjectID       string         `json:"subject_id,omitempty"`
	TenantID        string         `json:"tenant_id,omitempty"`
	Domain          string         `json:"domain,omitempty"`
	Event           string         `json:"event"`
	Category        string         `json:"category"`
	Outcome         string         `json:"outcome"`
	Reason          string         `json:"reason,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	IsSigned        bool           `json:"is_signed"`
	RetentionExpiry time.Time      `json:"retention_expiry"`
	CreatedAt       time.Time      `json:"created_at"`
}

// ListEntriesResponse represents a paginated list of audit entries.
type ListEntriesResponse struct {
	Data []EntryResponse `json:"data"`
}

// MapEntriesToListResponse converts audit entries to a list response.
func MapEntriesToListResponse(entries []*auditDomain.Entry) ListEntriesResponse {
	data := make([]EntryResponse, 0, len(entries))
	for _, entry := range entries {
		data = append(data, EntryResponse{
			ID:              entry.ID.String(),
			RequestID:       entry.RequestID,
			SubjectID:       entry.SubjectID,
			TenantID:        entry.TenantID,
			Domain:          string(entry.Domain),
			Event:           string(entry.Event),
			Category:        string(entry.Category),
			Outcome:         string(entry.Outcome),
			Reason:          entry.Reason,
			Metadata:        entry.Metadata,
			IsSigned:        entry.IsSigned,
			RetentionExpiry: entry.RetentionExpiry,
			CreatedAt:       entry.CreatedAt,
		})
	}

	return ListEntriesResponse{Data: data}
}
