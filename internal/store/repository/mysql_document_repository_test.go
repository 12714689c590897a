package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/innwise/fieldvault/internal/errors"
	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
	storeDomain "github.com/innwise/fieldvault/internal/store/domain"
	"github.com/innwise/fieldvault/internal/testutil"
)

func TestMySQLDocumentRepository_PutGetDelete(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLDocumentRepository(db)
	ctx := context.Background()

	doc := storeDomain.NewDocument("employees", "tnt-harbour", "emp-001", fieldcryptDomain.Record{
		"displayName":             "Priya Shah",
		"nationalInsuranceNumber": "ENC:c2VhbGVk",
	})

	require.NoError(t, repo.Put(ctx, doc))

	got, err := repo.Get(ctx, doc.Path)
	require.NoError(t, err)
	assert.Equal(t, "Priya Shah", got.Data["displayName"])
	assert.Equal(t, "ENC:c2VhbGVk", got.Data["nationalInsuranceNumber"])

	require.NoError(t, repo.Delete(ctx, doc.Path))
	_, err = repo.Get(ctx, doc.Path)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMySQLDocumentRepository_PutReplaces(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLDocumentRepository(db)
	ctx := context.Background()

	doc := storeDomain.NewDocument("employees", "tnt-harbour", "emp-001", fieldcryptDomain.Record{
		"status": "active",
	})
	require.NoError(t, repo.Put(ctx, doc))

	updated := storeDomain.NewDocument("employees", "tnt-harbour", "emp-001", fieldcryptDomain.Record{
		"status": "on-leave",
	})
	require.NoError(t, repo.Put(ctx, updated))

	got, err := repo.Get(ctx, doc.Path)
	require.NoError(t, err)
	assert.Equal(t, "on-leave", got.Data["status"])
}

func TestMySQLDocumentRepository_ListAndOlderThan(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLDocumentRepository(db)
	ctx := context.Background()

	old := storeDomain.NewDocument("payroll-entries", "tnt-harbour", "pr-old", fieldcryptDomain.Record{"id": "pr-old"})
	old.UpdatedAt = time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, repo.Put(ctx, old))

	fresh := storeDomain.NewDocument("payroll-entries", "tnt-harbour", "pr-new", fieldcryptDomain.Record{"id": "pr-new"})
	require.NoError(t, repo.Put(ctx, fresh))

	docs, err := repo.List(ctx, "payroll-entries", "tnt-harbour", 0, 50)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "pr-new", docs[0].RecordID)

	stale, err := repo.ListOlderThan(ctx, "payroll-entries", time.Now().UTC().Add(-24*time.Hour), 100)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "pr-old", stale[0].RecordID)
}

func TestMySQLDocumentRepository_ArchiveLifecycle(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLDocumentRepository(db)
	ctx := context.Background()

	doc := storeDomain.NewDocument("company-financials", "tnt-harbour", "fin-001", fieldcryptDomain.Record{"id": "fin-001"})
	doc.UpdatedAt = time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, repo.Put(ctx, doc))

	require.NoError(t, repo.Archive(ctx, doc.Path, time.Now().UTC()))

	docs, err := repo.List(ctx, "company-financials", "tnt-harbour", 0, 50)
	require.NoError(t, err)
	assert.Len(t, docs, 0)

	expired, err := repo.ListExpired(ctx, "company-financials", time.Now().UTC().Add(-24*time.Hour), 100)
	require.NoError(t, err)
	assert.Len(t, expired, 0)

	count, err := repo.CountExpired(ctx, "company-financials", time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	require.NoError(t, repo.Unarchive(ctx, doc.Path))

	expired, err = repo.ListExpired(ctx, "company-financials", time.Now().UTC().Add(-24*time.Hour), 100)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "fin-001", expired[0].RecordID)
}
