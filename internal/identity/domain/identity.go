// Package domain defines authenticated identities for the back-office API.
//
// Two credential shapes are accepted: platform JWTs carrying user claims, and
// service-account tokens in the form "sa.<id>.<secret>" used by machine
// integrations (payroll exports, booking sync).
package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Kind distinguishes interactive users from machine credentials.
type Kind string

const (
	// KindUser is an interactive identity carried by a platform JWT.
	KindUser Kind = "user"
	// KindService is a machine identity carried by a service-account token.
	KindService Kind = "service"
)

// Identity is the authenticated caller of a guarded operation.
type Identity struct {
	SubjectID string         // Stable subject identifier (JWT sub or service-account ID)
	Kind      Kind           // User or service credential
	Claims    map[string]any // Raw verified claims (nil for service accounts)
	StepUp    bool           // Whether the credential carries recent strong authentication
}

// StepUpPredicate decides from verified claims whether a credential counts as
// recently strongly authenticated. Platforms encode this differently, so the
// predicate is pluggable.
type StepUpPredicate func(claims map[string]any) bool

// DefaultStepUpPredicate reads the named claim and accepts authentication
// method references containing "mfa" or "otp", or a boolean true value.
func DefaultStepUpPredicate(claimName string) StepUpPredicate {
	return func(claims map[string]any) bool {
		value, ok := claims[claimName]
		if !ok {
			return false
		}

		switch v := value.(type) {
		case bool:
			return v
		case string:
			return isStrongMethod(v)
		case []string:
			for _, method := range v {
				if isStrongMethod(method) {
					return true
				}
			}
		case []any:
			for _, item := range v {
				if method, ok := item.(string); ok && isStrongMethod(method) {
					return true
				}
			}
		}
		return false
	}
}

func isStrongMethod(method string) bool {
	return method == "mfa" || method == "otp"
}

// serviceTokenPrefix marks service-account credentials.
const serviceTokenPrefix = "sa"

// FormatServiceToken builds the one-time plaintext token handed out when a
// service account is created.
func FormatServiceToken(accountID uuid.UUID, plainSecret string) string {
	return serviceTokenPrefix + "." + accountID.String() + "." + plainSecret
}

// ParseServiceToken splits a credential in the form "sa.<id>.<secret>".
// Returns false for anything else, including JWTs (their first dot-separated
// segment is a base64 header, never "sa").
func ParseServiceToken(credential string) (accountID uuid.UUID, plainSecret string, ok bool) {
	parts := strings.SplitN(credential, ".", 3)
	if len(parts) != 3 || parts[0] != serviceTokenPrefix || parts[2] == "" {
		return uuid.Nil, "", false
	}

	accountID, err := uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, "", false
	}

	return accountID, parts[2], true
}
