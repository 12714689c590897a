package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/innwise/fieldvault/internal/errors"
	identityDomain "github.com/innwise/fieldvault/internal/identity/domain"
	identityService "github.com/innwise/fieldvault/internal/identity/service"
)

// identityUseCase implements IdentityUseCase for JWTs and service-account tokens.
type identityUseCase struct {
	serviceAccountRepo ServiceAccountRepository
	tokenVerifier      identityService.TokenVerifier
	secretService      identityService.SecretService
	stepUpPredicate    identityDomain.StepUpPredicate
}

// Verify authenticates a bearer credential.
//
// Service-account tokens ("sa.<id>.<secret>") are checked against the stored
// argon2id hash; anything else is treated as a platform JWT. Not-found,
// inactive and wrong-secret all collapse into ErrUnauthenticated to prevent
// account enumeration.
func (i *identityUseCase) Verify(
	ctx context.Context,
	credential string,
) (*identityDomain.Identity, error) {
	if credential == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	if accountID, plainSecret, ok := identityDomain.ParseServiceToken(credential); ok {
		return i.verifyServiceToken(ctx, accountID, plainSecret)
	}

	return i.verifyJWT(credential)
}

func (i *identityUseCase) verifyServiceToken(
	ctx context.Context,
	accountID uuid.UUID,
	plainSecret string,
) (*identityDomain.Identity, error) {
	account, err := i.serviceAccountRepo.Get(ctx, accountID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, err
	}

	if !account.IsActive {
		return nil, apperrors.ErrUnauthenticated
	}

	if !i.secretService.CompareSecret(plainSecret, account.SecretHash) {
		return nil, apperrors.ErrUnauthenticated
	}

	// Machine credentials are provisioned out of band and cannot perform an
	// interactive step-up, so they count as strongly authenticated.
	return &identityDomain.Identity{
		SubjectID: account.ID.String(),
		Kind:      identityDomain.KindService,
		Claims:    nil,
		StepUp:    true,
	}, nil
}

func (i *identityUseCase) verifyJWT(credential string) (*identityDomain.Identity, error) {
	claims, err := i.tokenVerifier.Verify(credential)
	if err != nil {
		return nil, apperrors.ErrUnauthenticated
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	return &identityDomain.Identity{
		SubjectID: subject,
		Kind:      identityDomain.KindUser,
		Claims:    claims,
		StepUp:    i.stepUpPredicate(claims),
	}, nil
}

// CreateServiceAccount provisions a new machine credential.
func (i *identityUseCase) CreateServiceAccount(
	ctx context.Context,
	input *identityDomain.CreateServiceAccountInput,
) (*identityDomain.CreateServiceAccountOutput, error) {
	plainSecret, hashedSecret, err := i.secretService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	account := &identityDomain.ServiceAccount{
		ID:         uuid.Must(uuid.NewV7()),
		Name:       input.Name,
		SecretHash: hashedSecret,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}

	if err := i.serviceAccountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return &identityDomain.CreateServiceAccountOutput{
		ID:         account.ID,
		PlainToken: identityDomain.FormatServiceToken(account.ID, plainSecret),
	}, nil
}

// NewIdentityUseCase creates a new IdentityUseCase with the provided dependencies.
func NewIdentityUseCase(
	serviceAccountRepo ServiceAccountRepository,
	tokenVerifier identityService.TokenVerifier,
	secretService identityService.SecretService,
	stepUpPredicate identityDomain.StepUpPredicate,
) IdentityUseCase {
	return &identityUseCase{
		serviceAccountRepo: serviceAccountRepo,
		tokenVerifier:      tokenVerifier,
		secretService:      secretService,
		stepUpPredicate:    stepUpPredicate,
	}
}
