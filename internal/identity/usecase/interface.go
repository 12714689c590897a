// Package usecase implements business logic orchestration for identity verification.
package usecase

import (
	"context"

	"github.com/google/uuid"

	identityDomain "github.com/innwise/fieldvault/internal/identity/domain"
)

// ServiceAccountRepository defines persistence operations for service accounts.
type ServiceAccountRepository interface {
	// Create stores a new service account in the repository.
	Create(ctx context.Context, account *identityDomain.ServiceAccount) error

	// Get retrieves a service account by ID.
	// Returns ErrNotFound if the account does not exist.
	Get(ctx context.Context, id uuid.UUID) (*identityDomain.ServiceAccount, error)
}

// IdentityUseCase verifies bearer credentials and manages service accounts.
type IdentityUseCase interface {
	// Verify authenticates a bearer credential (platform JWT or
	// service-account token) and returns the caller's identity.
	// All failures are ErrUnauthenticated; the reason is never disclosed.
	Verify(ctx context.Context, credential string) (*identityDomain.Identity, error)

	// CreateServiceAccount provisions a machine credential and returns the
	// one-time plaintext token.
	CreateServiceAccount(
		ctx context.Context,
		input *identityDomain.CreateServiceAccountInput,
	) (*identityDomain.CreateServiceAccountOutput, error)
}
