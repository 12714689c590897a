package domain

import (
	"github.com/innwise/fieldvault/internal/errors"
)

var (
	// ErrPathConflict indicates a path write had to traverse an existing
	// non-map value (e.g. setting "salary.amount" when "salary" is a string).
	ErrPathConflict = errors.Wrap(errors.ErrInvalidInput, "path traverses a non-object value")

	// ErrUnknownCollection indicates no field policy is registered for the
	// requested collection.
	ErrUnknownCollection = errors.Wrap(errors.ErrConfiguration, "unknown record collection")

	// ErrPolicyInvalid indicates a field policy whose safe keys overlap its
	// sensitive paths. Such a policy could leak sensitive material through
	// list projections and is rejected at startup.
	ErrPolicyInvalid = errors.Wrap(errors.ErrConfiguration, "field policy safe keys overlap sensitive paths")
)
