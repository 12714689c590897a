// Package dto provides data transfer objects for records API responses.
package dto

import (
	"time"

	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
	recordsUseCase "github.com/innwise/fieldvault/internal/records/usecase"
)

// RecordSummaryResponse represents one list entry. Data holds the allow-list
// projection only; sensitive fields are structurally absent.
type RecordSummaryResponse struct {
	RecordID  string                  `json:"record_id"`
	Data      fieldcryptDomain.Record `json:"data"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// ListRecordsResponse represents a paginated list of record summaries.
type ListRecordsResponse struct {
	Data []RecordSummaryResponse `json:"data"`
}

// RecordDetailResponse represents a full record read with sensitive fields
// opened. Degraded appears only when at least one field was redacted.
type RecordDetailResponse struct {
	Collection string                  `json:"collection"`
	TenantID   string                  `json:"tenant_id"`
	RecordID   string                  `json:"record_id"`
	Data       fieldcryptDomain.Record `json:"data"`
	Degraded   bool                    `json:"degraded,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// WriteReceiptResponse acknowledges a write with coordinates and timestamps.
// Record data is never echoed back.
type WriteReceiptResponse struct {
	Collection string    `json:"collection"`
	TenantID   string    `json:"tenant_id"`
	RecordID   string    `json:"record_id"`
	Degraded   bool      `json:"degraded,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MapSummariesToListResponse converts use case summaries to a list response.
func MapSummariesToListResponse(summaries []*recordsUseCase.RecordSummary) ListRecordsResponse {
	data := make([]RecordSummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		data = append(data, RecordSummaryResponse{
			RecordID:  summary.RecordID,
			Data:      summary.Data,
			UpdatedAt: summary.UpdatedAt,
		})
	}

	return ListRecordsResponse{Data: data}
}

// MapDetailToResponse converts a use case record detail to an API response.
func MapDetailToResponse(detail *recordsUseCase.RecordDetail) RecordDetailResponse {
	return RecordDetailResponse{
		Collection: detail.Collection,
		TenantID:   detail.TenantID,
		RecordID:   detail.RecordID,
		Data:       detail.Data,
		Degraded:   detail.Degraded,
		CreatedAt:  detail.CreatedAt,
		UpdatedAt:  detail.UpdatedAt,
	}
}

// MapReceiptToResponse converts a use case write receipt to an API response.
func MapReceiptToResponse(receipt *recordsUseCase.WriteReceipt) WriteReceiptResponse {
	return WriteReceiptResponse{
		Collection: receipt.Collection,
		TenantID:   receipt.TenantID,
		RecordID:   receipt.RecordID,
		Degraded:   receipt.Degraded,
		CreatedAt:  receipt.CreatedAt,
		UpdatedAt:  receipt.UpdatedAt,
	}
}
