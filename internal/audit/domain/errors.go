package domain

import (
	apperrors "github.com/innwise/fieldvault/internal/errors"
)

// ErrSignatureInvalid indicates an entry's HMAC signature does not match its
// content. The entry has been modified after writing or was signed with a
// different master secret.
var ErrSignatureInvalid = apperrors.Wrap(apperrors.ErrIntegrity, "audit entry signature invalid")
