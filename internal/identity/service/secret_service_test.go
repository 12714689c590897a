package service

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSecretService(t *testing.T) {
	service := NewSecretService()
	assert.NotNil(t, service)
	assert.IsType(t, &secretService{}, service)
}

func TestSecretService_GenerateSecret(t *testing.T) {
	service := NewSecretService()

	t.Run("Success_GeneratesValidSecret", func(t *testing.T) {
		plainSecret, hashedSecret, err := service.GenerateSecret()
		require.NoError(t, err)

		decoded, err := base64.URLEncoding.DecodeString(plainSecret)
		require.NoError(t, err)
		assert.Len(t, decoded, 32)

		// The plain secret must be safe to embed in "sa.<id>.<secret>".
		assert.NotContains(t, strings.TrimRight(plainSecret, "="), ".")

		assert.NotEqual(t, plainSecret, hashedSecret)
		assert.Contains(t, hashedSecret, "$argon2id$")
	})

	t.Run("Success_GeneratesUniqueSecrets", func(t *testing.T) {
		plainSecret1, _, err := service.GenerateSecret()
		require.NoError(t, err)

		plainSecret2, _, err := service.GenerateSecret()
		require.NoError(t, err)

		assert.NotEqual(t, plainSecret1, plainSecret2)
	})

	t.Run("Success_GeneratedSecretCanBeVerified", func(t *testing.T) {
		plainSecret, hashedSecret, err := service.GenerateSecret()
		require.NoError(t, err)

		assert.True(t, service.CompareSecret(plainSecret, hashedSecret))
	})
}

func TestSecretService_HashSecret(t *testing.T) {
	service := NewSecretService()

	t.Run("Success_SameSecretProducesDifferentHashes", func(t *testing.T) {
		plainSecret := "integration-secret-123"

		hashedSecret1, err := service.HashSecret(plainSecret)
		require.NoError(t, err)

		hashedSecret2, err := service.HashSecret(plainSecret)
		require.NoError(t, err)

		// Different salts, same verification result.
		assert.NotEqual(t, hashedSecret1, hashedSecret2)
		assert.True(t, service.CompareSecret(plainSecret, hashedSecret1))
		assert.True(t, service.CompareSecret(plainSecret, hashedSecret2))
	})
}

func TestSecretService_CompareSecret(t *testing.T) {
	service := NewSecretService()

	hashedSecret, err := service.HashSecret("correct-secret")
	require.NoError(t, err)

	t.Run("Success_CorrectSecretMatches", func(t *testing.T) {
		assert.True(t, service.CompareSecret("correct-secret", hashedSecret))
	})

	t.Run("Failure_IncorrectSecretDoesNotMatch", func(t *testing.T) {
		assert.False(t, service.CompareSecret("wrong-secret", hashedSecret))
	})

	t.Run("Failure_EmptySecretDoesNotMatch", func(t *testing.T) {
		assert.False(t, service.CompareSecret("", hashedSecret))
	})

	t.Run("Failure_InvalidHashFormat", func(t *testing.T) {
		assert.False(t, service.CompareSecret("correct-secret", "invalid-hash-format"))
	})
}
