package dto

import (
	validation "github.com/jellydator/validation"

	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
	customValidation "github.com/innwise/fieldvault/internal/validation"
)

// Coordinates are the tenant and record path segments of a records route.
type Coordinates struct {
	TenantID string `json:"tenant_id"`
	RecordID string `json:"record_id"`
}

// Validate checks that both path segments are well-formed identifiers.
func (c *Coordinates) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TenantID,
			validation.Required,
			customValidation.Slug,
			validation.Length(1, 128),
		),
		validation.Field(&c.RecordID,
			validation.Required,
			customValidation.Slug,
			validation.Length(1, 128),
		),
	)
}

// ListCoordinates is the tenant segment of a list route, which has no record id.
type ListCoordinates struct {
	TenantID string `json:"tenant_id"`
}

// Validate checks that the tenant segment is a well-formed identifier.
func (c *ListCoordinates) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TenantID,
			validation.Required,
			customValidation.Slug,
			validation.Length(1, 128),
		),
	)
}

// ValidateBankingFields checks the banking identifiers a bank-accounts write
// may carry. Both fields are optional so partial updates stay possible, but a
// present string value must be a well-formed UK sort code or account number.
func ValidateBankingFields(record fieldcryptDomain.Record) error {
	if sortCode, ok := record["sortCode"].(string); ok {
		if err := customValidation.SortCode.Validate(sortCode); err != nil {
			return validation.Errors{"sortCode": err}
		}
	}

	if accountNumber, ok := record["accountNumber"].(string); ok {
		if err := customValidation.AccountNumber.Validate(accountNumber); err != nil {
			return validation.Errors{"accountNumber": err}
		}
	}

	return nil
}
