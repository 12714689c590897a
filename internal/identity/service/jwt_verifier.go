package service

import (
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/innwise/fieldvault/internal/errors"
)

// jwtVerifier implements TokenVerifier for HS256 platform JWTs.
type jwtVerifier struct {
	signingKey []byte
	issuer     string
	audience   string
}

// Verify parses and validates the token. Signature, algorithm, issuer,
// audience, expiry and not-before are all enforced; any failure maps to
// ErrUnauthenticated so callers cannot distinguish why a credential was
// rejected.
func (j *jwtVerifier) Verify(tokenString string) (map[string]any, error) {
	token, err := jwt.Parse(
		tokenString,
		func(token *jwt.Token) (any, error) {
			return j.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithAudience(j.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, apperrors.ErrUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.ErrUnauthenticated
	}

	return claims, nil
}

// NewJWTVerifier creates a TokenVerifier for HS256 tokens issued by the
// platform with the given issuer and audience.
func NewJWTVerifier(signingKey []byte, issuer, audience string) TokenVerifier {
	return &jwtVerifier{
		signingKey: signingKey,
		issuer:     issuer,
		audience:   audience,
	}
}
