package domain

import (
	"github.com/innwise/fieldvault/internal/errors"
)

// Guard denials. All wrap ErrPermissionDenied so the HTTP layer surfaces one
// uniform 403 body whichever check failed; the distinct sentinels exist for
// logs, audit reasons, and tests.
var (
	// ErrNotMember indicates the caller does not belong to the target tenant.
	ErrNotMember = errors.Wrap(errors.ErrPermissionDenied, "not a member of the tenant")

	// ErrRoleNotAllowed indicates the caller's role is outside the
	// operation's allowed set.
	ErrRoleNotAllowed = errors.Wrap(errors.ErrPermissionDenied, "role not allowed for the operation")

	// ErrStepUpRequired indicates the operation demands step-up
	// authentication the credential does not carry.
	ErrStepUpRequired = errors.Wrap(errors.ErrPermissionDenied, "step-up authentication required")

	// ErrSubjectMismatch indicates a user-scoped operation targeting another
	// subject's record.
	ErrSubjectMismatch = errors.Wrap(errors.ErrPermissionDenied, "record belongs to another subject")
)

// Audit reasons for guard denials. Stable snake_case strings so security
// dashboards can aggregate them.
const (
	ReasonNotMember       = "not_a_member"
	ReasonRoleNotAllowed  = "role_not_allowed"
	ReasonStepUpRequired  = "step_up_required"
	ReasonSubjectMismatch = "subject_mismatch"
	ReasonKeyResolution   = "key_resolution_failed"
)
