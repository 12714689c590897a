// Package service provides technical services for identity verification.
//
// It implements platform JWT verification and service-account secret
// generation, hashing and comparison.
package service

// TokenVerifier defines verification of platform-issued bearer JWTs.
type TokenVerifier interface {
	// Verify checks the token signature, issuer, audience and time claims
	// and returns the verified claim set.
	Verify(tokenString string) (map[string]any, error)
}

// SecretService defines operations for service-account secret generation and
// validation. Implementations must use cryptographically secure random
// generation and industry-standard hashing algorithms (e.g., argon2).
type SecretService interface {
	// GenerateSecret creates a new cryptographically secure random secret.
	// Returns both the plain text secret (embedded in the one-time token
	// handed to the integration) and the hashed version (stored).
	GenerateSecret() (plainSecret string, hashedSecret string, error error)

	// HashSecret hashes a plain text secret using a secure hashing algorithm.
	HashSecret(plainSecret string) (hashedSecret string, error error)

	// CompareSecret compares a plain text secret against a hashed secret.
	// This is constant-time to prevent timing attacks.
	CompareSecret(plainSecret string, hashedSecret string) bool
}
