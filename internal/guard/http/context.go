// Package http wires the authorization guard chain into Gin: authentication,
// per-subject rate limiting, and the guard middleware that runs the chain and
// hands the domain key to handlers through the request context.
package http

import (
	"context"

	guardDomain "github.com/innwise/fieldvault/internal/guard/domain"
	identityDomain "github.com/innwise/fieldvault/internal/identity/domain"
)

// identityKey is a context key type for storing verified identities.
type identityKey struct{}

// grantKey is a context key type for storing access grants.
type grantKey struct{}

// domainKeyKey is a context key type for storing resolved domain keys.
type domainKeyKey struct{}

// WithIdentity stores a verified identity in the context.
// Called by the authentication middleware after credential verification.
func WithIdentity(ctx context.Context, identity *identityDomain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentity retrieves the verified identity from the context.
// Returns (identity, true) if present, or (nil, false) if no identity was set.
func GetIdentity(ctx context.Context) (*identityDomain.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*identityDomain.Identity)
	return identity, ok
}

// WithGrant stores an access grant in the context.
// Called by the guard middleware after a successful chain evaluation.
func WithGrant(ctx context.Context, grant *guardDomain.AccessGrant) context.Context {
	return context.WithValue(ctx, grantKey{}, grant)
}

// GetGrant retrieves the access grant from the context.
// Returns (grant, true) if present, or (nil, false) if no grant was set.
func GetGrant(ctx context.Context) (*guardDomain.AccessGrant, bool) {
	grant, ok := ctx.Value(grantKey{}).(*guardDomain.AccessGrant)
	return grant, ok
}

// WithDomainKey stores the resolved domain key in the context. The guard
// middleware owns the key's lifetime and zeroes it when the request completes;
// handlers must not retain the slice beyond the request.
func WithDomainKey(ctx context.Context, key []byte) context.Context {
	return context.WithValue(ctx, domainKeyKey{}, key)
}

// GetDomainKey retrieves the resolved domain key from the context.
// Returns (key, true) if present, or (nil, false) if no key was set.
func GetDomainKey(ctx context.Context) ([]byte, bool) {
	key, ok := ctx.Value(domainKeyKey{}).([]byte)
	return key, ok
}
