package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/innwise/fieldvault/internal/errors"
	"github.com/innwise/fieldvault/internal/testutil"
)

func TestMySQLServiceAccountRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLServiceAccountRepository(db)
	ctx := context.Background()

	account := newServiceAccount("payroll-export")
	require.NoError(t, repo.Create(ctx, account))

	got, err := repo.Get(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
	assert.Equal(t, "payroll-export", got.Name)
	assert.Equal(t, account.SecretHash, got.SecretHash)
	assert.True(t, got.IsActive)
	assert.WithinDuration(t, account.CreatedAt, got.CreatedAt, time.Second)
}

func TestMySQLServiceAccountRepository_GetNotFound(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewMySQLServiceAccountRepository(db)

	_, err := repo.Get(context.Background(), uuid.Must(uuid.NewV7()))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
