package domain

import (
	"github.com/innwise/fieldvault/internal/errors"
)

// Domain key error definitions.
var (
	// ErrNoActiveKey indicates no active secret exists for a record domain.
	// Encryption cannot proceed without one, so this is a configuration error.
	ErrNoActiveKey = errors.Wrap(errors.ErrConfiguration, "no active key for domain")

	// ErrKeyExists indicates the domain already has an active secret;
	// provisioning again requires a rotation instead.
	ErrKeyExists = errors.Wrap(errors.ErrConflict, "domain key already exists")

	// ErrInvalidKeySet indicates the DOMAIN_KEYS value could not be parsed.
	ErrInvalidKeySet = errors.Wrap(errors.ErrConfiguration, "invalid domain key set")
)
