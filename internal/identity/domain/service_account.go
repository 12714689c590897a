package domain

import (
	"time"

	"github.com/google/uuid"
)

// ServiceAccount is a machine credential for non-interactive API access.
// Only the argon2id hash of the secret is stored.
type ServiceAccount struct {
	ID         uuid.UUID
	Name       string // Human-readable name for identifying the integration
	SecretHash string //nolint:gosec // hashed secret (not plaintext)
	IsActive   bool   // Inactive accounts cannot authenticate
	CreatedAt  time.Time
}

// CreateServiceAccountInput contains the parameters for creating a service account.
// The secret is always generated server-side.
type CreateServiceAccountInput struct {
	Name string
}

// CreateServiceAccountOutput contains the result of creating a service account.
// SECURITY: PlainToken is only returned once and is never retrievable again.
type CreateServiceAccountOutput struct {
	ID         uuid.UUID
	PlainToken string // Full credential "sa.<id>.<secret>" (transmit securely, never log)
}
