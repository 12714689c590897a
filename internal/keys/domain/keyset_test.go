package domain

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/innwise/fieldvault/internal/errors"
	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
)

func encodeSecret(seed string) string {
	secret := []byte(strings.Repeat(seed, 32)[:32])
	return base64.StdEncoding.EncodeToString(secret)
}

func TestParseKeySet(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		raw := "hr:" + encodeSecret("a") + ",banking:" + encodeSecret("b")

		keySet, err := ParseKeySet(raw)
		require.NoError(t, err)
		defer keySet.Close()

		hrSecret, ok := keySet.Get(fieldcryptDomain.DomainHR)
		require.True(t, ok)
		assert.Len(t, hrSecret, 32)

		bankingSecret, ok := keySet.Get(fieldcryptDomain.DomainBanking)
		require.True(t, ok)
		assert.NotEqual(t, hrSecret, bankingSecret)

		_, ok = keySet.Get(fieldcryptDomain.DomainFinance)
		assert.False(t, ok)
	})

	t.Run("Success_WhitespaceTolerated", func(t *testing.T) {
		raw := "hr:" + encodeSecret("a") + ", payroll:" + encodeSecret("c")

		keySet, err := ParseKeySet(raw)
		require.NoError(t, err)
		defer keySet.Close()

		_, ok := keySet.Get(fieldcryptDomain.DomainPayroll)
		assert.True(t, ok)
	})

	t.Run("Error_Empty", func(t *testing.T) {
		_, err := ParseKeySet("")
		assert.ErrorIs(t, err, ErrInvalidKeySet)
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	})

	t.Run("Error_MalformedEntry", func(t *testing.T) {
		_, err := ParseKeySet("hr")
		assert.ErrorIs(t, err, ErrInvalidKeySet)
	})

	t.Run("Error_UnknownDomain", func(t *testing.T) {
		_, err := ParseKeySet("bookings:" + encodeSecret("a"))
		assert.ErrorIs(t, err, ErrInvalidKeySet)
	})

	t.Run("Error_InvalidBase64", func(t *testing.T) {
		_, err := ParseKeySet("hr:!!!not-base64!!!")
		assert.ErrorIs(t, err, ErrInvalidKeySet)
	})

	t.Run("Error_SecretTooShort", func(t *testing.T) {
		short := base64.StdEncoding.EncodeToString([]byte("short"))
		_, err := ParseKeySet("hr:" + short)
		assert.ErrorIs(t, err, ErrInvalidKeySet)
		assert.Contains(t, err.Error(), "at least 32 bytes")
	})
}

func TestKeySet_GetReturnsCopy(t *testing.T) {
	keySet, err := ParseKeySet("hr:" + encodeSecret("a"))
	require.NoError(t, err)
	defer keySet.Close()

	first, ok := keySet.Get(fieldcryptDomain.DomainHR)
	require.True(t, ok)

	// Zeroing the caller's copy must not affect later resolutions.
	for i := range first {
		first[i] = 0
	}

	second, ok := keySet.Get(fieldcryptDomain.DomainHR)
	require.True(t, ok)
	assert.NotEqual(t, first, second)
	assert.Len(t, second, 32)
}

func TestKeySet_Close(t *testing.T) {
	keySet, err := ParseKeySet("hr:" + encodeSecret("a"))
	require.NoError(t, err)

	keySet.Close()

	_, ok := keySet.Get(fieldcryptDomain.DomainHR)
	assert.False(t, ok)
}
