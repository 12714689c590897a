package domain

import (
	tenantDomain "github.com/innwise/fieldvault/internal/tenant/domain"
)

// AccessGrant is the result of a successful guard chain evaluation. It lives
// only for the duration of one request and is never persisted; handlers read
// it from the request context to know who they are acting for.
type AccessGrant struct {
	SubjectID string
	TenantID  string
	// Role is the caller's role in the tenant. Empty for user-scoped
	// operations, which authorize by identity instead of role.
	Role      tenantDomain.Role
	Operation *Operation
	StepUp    bool
}
