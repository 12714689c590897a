// Package usecase implements the authorization guard chain, the single
// mandatory entry point for any operation that may decrypt or mutate
// sensitive records.
package usecase

import (
	"context"

	guardDomain "github.com/innwise/fieldvault/internal/guard/domain"
	identityDomain "github.com/innwise/fieldvault/internal/identity/domain"
)

// GuardUseCase evaluates the ordered authorization chain for guarded
// operations. Authentication happens upstream; everything from tenant scope
// to key provisioning happens here.
type GuardUseCase interface {
	// Authorize runs the chain for a verified identity: tenant membership,
	// role check, step-up policy, then domain key resolution. Checks
	// short-circuit on first failure and no key is resolved for a rejected
	// request. Denials are recorded as security audit events with distinct
	// internal reasons while the returned error stays uniform.
	//
	// On success returns the access grant and the resolved domain key.
	// The caller owns the key copy and must zero it when the request
	// completes.
	Authorize(
		ctx context.Context,
		op *guardDomain.Operation,
		resource *guardDomain.ResourcePath,
		identity *identityDomain.Identity,
	) (*guardDomain.AccessGrant, []byte, error)
}
