package domain

import (
	"strings"

	apperrors "github.com/innwise/fieldvault/internal/errors"
)

// ResourcePath addresses a record (or a collection within a tenant) as
// "{collection}/{tenantId}" or "{collection}/{tenantId}/{recordId}". The
// tenant id lives inside the path itself; the guard never reads it from a
// header or body field, so a caller cannot claim one tenant while targeting
// another.
type ResourcePath struct {
	Collection string
	TenantID   string
	// RecordID is empty for list and create operations. For user-scoped
	// collections it carries the owning subject id.
	RecordID string
}

// ParseResourcePath splits a slash-separated resource path.
// Returns ErrInvalidInput for paths with missing or empty segments.
func ParseResourcePath(path string) (*ResourcePath, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid resource path")
	}
	for _, part := range parts {
		if part == "" {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid resource path")
		}
	}

	resource := &ResourcePath{
		Collection: parts[0],
		TenantID:   parts[1],
	}
	if len(parts) == 3 {
		resource.RecordID = parts[2]
	}
	return resource, nil
}

// String renders the path in its canonical slash-separated form.
func (r *ResourcePath) String() string {
	if r.RecordID == "" {
		return r.Collection + "/" + r.TenantID
	}
	return r.Collection + "/" + r.TenantID + "/" + r.RecordID
}

// Validate rejects paths with empty mandatory segments.
func (r *ResourcePath) Validate() error {
	if r.Collection == "" || r.TenantID == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "invalid resource path")
	}
	return nil
}
