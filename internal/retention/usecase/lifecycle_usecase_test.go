package usecase

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/innwise/fieldvault/internal/audit/domain"
	apperrors "github.com/innwise/fieldvault/internal/errors"
	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
	retentionDomain "github.com/innwise/fieldvault/internal/retention/domain"
	storeDomain "github.com/innwise/fieldvault/internal/store/domain"
)

// mockDeletionRepository is a mock implementation of DeletionRepository.
type mockDeletionRepository struct {
	mock.Mock
}

func (m *mockDeletionRepository) Create(ctx context.Context, record *retentionDomain.DeletionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockDeletionRepository) GetBySubject(
	ctx context.Context,
	tenantID, subjectID string,
) (*retentionDomain.DeletionRecord, error) {
	args := m.Called(ctx, tenantID, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*retentionDomain.DeletionRecord), args.Error(1)
}

func (m *mockDeletionRepository) Update(ctx context.Context, record *retentionDomain.DeletionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockDeletionRepository) ListDue(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*retentionDomain.DeletionRecord, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*retentionDomain.DeletionRecord), args.Error(1)
}

func (m *mockDeletionRepository) CountDue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// mockDocumentStore is a mock implementation of DocumentStore.
type mockDocumentStore struct {
	mock.Mock
}

func (m *mockDocumentStore) Get(ctx context.Context, path string) (*storeDomain.Document, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storeDomain.Document), args.Error(1)
}

func (m *mockDocumentStore) Put(ctx context.Context, doc *storeDomain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *mockDocumentStore) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *mockDocumentStore) Archive(ctx context.Context, path string, archivedAt time.Time) error {
	args := m.Called(ctx, path, archivedAt)
	return args.Error(0)
}

func (m *mockDocumentStore) Unarchive(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *mockDocumentStore) ListExpired(
	ctx context.Context,
	collection string,
	cutoff time.Time,
	limit int,
) ([]*storeDomain.Document, error) {
	args := m.Called(ctx, collection, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storeDomain.Document), args.Error(1)
}

func (m *mockDocumentStore) CountExpired(ctx context.Context, collection string, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, collection, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// mockAuditUseCase is a mock implementation of audit usecase.AuditUseCase.
type mockAuditUseCase struct {
	mock.Mock
}

func (m *mockAuditUseCase) Record(ctx context.Context, event *auditDomain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockAuditUseCase) List(
	ctx context.Context,
	offset, limit int,
	tenantID string,
	category auditDomain.Category,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.Entry, error) {
	args := m.Called(ctx, offset, limit, tenantID, category, createdAtFrom, createdAtTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.Entry), args.Error(1)
}

func (m *mockAuditUseCase) DeleteExpired(ctx context.Context, dryRun bool) (int64, error) {
	args := m.Called(ctx, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAuditUseCase) VerifyRange(
	ctx context.Context,
	createdAtFrom, createdAtTo *time.Time,
) (*auditDomain.VerificationResult, error) {
	args := m.Called(ctx, createdAtFrom, createdAtTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.VerificationResult), args.Error(1)
}

const personalPath = "personal-settings/tenant-1/usr-100"

func TestLifecycleUseCase_SoftDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockDeletions := &mockDeletionRepository{}
		mockDocuments := &mockDocumentStore{}
		mockAudit := &mockAuditUseCase{}

		mockDeletions.On("GetBySubject", ctx, "tenant-1", "usr-100").
			Return(nil, apperrors.ErrNotFound).
			Once()

		var created *retentionDomain.DeletionRecord
		mockDeletions.On("Create", ctx, mock.AnythingOfType("*domain.DeletionRecord")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*retentionDomain.DeletionRecord)
			}).
			Return(nil).
			Once()

		mockDocuments.On("Archive", ctx, personalPath, mock.AnythingOfType("time.Time")).
			Return(nil).
			Once()

		var event *auditDomain.Event
		mockAudit.On("Record", ctx, mock.AnythingOfType("*domain.Event")).
			Run(func(args mock.Arguments) {
				event = args.Get(1).(*auditDomain.Event)
			}).
			Return(nil).
			Once()

		useCase := NewLifecycleUseCase(mockDeletions, mockDocuments, mockAudit, 0, slog.Default())
		record, err := useCase.SoftDelete(ctx, "tenant-1", "usr-100")

		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, retentionDomain.StatusSoftDeleted, record.Status)
		assert.Equal(t, "tenant-1", record.TenantID)
		assert.Equal(t, "usr-100", record.SubjectID)
		// A zero grace period falls back to the default.
		assert.WithinDuration(t,
			time.Now().UTC().Add(retentionDomain.DefaultGracePeriod), record.GracePeriodEnd, 5*time.Second)

		require.NotNil(t, created)
		assert.Equal(t, record.ID, created.ID)

		require.NotNil(t, event)
		assert.Equal(t, auditDomain.EventRecordSoftDeleted, event.Type)
		assert.Equal(t, auditDomain.OutcomeSuccess, event.Outcome)
		assert.Equal(t, "usr-100", event.SubjectID)
		assert.Equal(t, "tenant-1", event.TenantID)
		assert.Equal(t, fieldcryptDomain.DomainPersonal, event.Domain)

		mockDeletions.AssertExpectations(t)
		mockDocuments.AssertExpectations(t)
		mockAudit.AssertExpectations(t)
	})

	t.Run("Success_NoPersonalDocument", func(t *testing.T) {
		mockDeletions := &mockDeletionRepository{}
		mockDocuments := &mockDocumentStore{}
		mockAudit := &mockAuditUseCase{}

		mockDeletions.On("GetBySubject", ctx, "tenant-1", "usr-100").
			Return(nil, apperrors.ErrNotFound).
			Once()
		mockDeletions.On("Create", ctx, mock.AnythingOfType("*domain.DeletionRecord")).
			Return(nil).
			Once()
		mockDocuments.On("Archive", ctx, personalPath, mock.AnythingOfType("time.Time")).
			Return(apperrors.ErrNotFound).
			Once()
		mockAudit.On("Record", ctx, mock.AnythingOfType("*domain.Event")).
			Return(nil).
			Once()

		useCase := NewLifecycleUseCase(mockDeletions, mockDocuments, mockAudit, 0, slog.Default())
		record, err := useCase.SoftDelete(ctx, "tenant-1", "usr-100")

		require.NoError(t, err)
		assert.Equal(t, retentionDomain.StatusSoftDeleted, record.Status)
		mockAudit.AssertExpectations(t)
	})

	t.Run("Success_AfterEarlierRestore", func(t *testing.T) {
		mockDeletions := &mockDeletionRepository{}
		mockDocuments := &mockDocumentStore{}
		mockAudit := &mockAuditUseCase{}

		restored := retentionDomain.NewDeletionRecord("tenant-1", "usr-100", time.Hour)
		require.NoError(t, restored.Restore(time.Now().UTC()))

		mockDeletions.On("GetBySubject", ctx, "tenant-1", "usr-100").
			Return(restored, nil).
			Once()
		mockDeletions.On("Create", ctx, mock.AnythingOfType("*domain.DeletionRecord")).
			Return(nil).
			Once()
		mockDocuments.On("Archive", ctx, personalPath, mock.AnythingOfType("time.Time")).
			Return(nil).
			Once()
		mockAudit.On("Record", ctx, mock.AnythingOfType("*domain.Event")).
			Return(nil).
			Once()

		useCase := NewLifecycleUseCase(mockDeletions, mockDocuments, mockAudit, 0, slog.Default())
		record, err := useCase.SoftDelete(ctx, "tenant-1", "usr-100")

		require.NoError(t, err)
		assert.NotEqual(t, restored.ID, record.ID)
		assert.Equal(t, retentionDomain.StatusSoftDeleted, record.Status)
	})

	t.Run("Error_DeletionAlreadyPending", func(t *testing.T) {
		mockDeletions := &mockDeletionRepository{}
		mockDocuments := &mockDocumentStore{}
		mockAudit := &mockAuditUseCase{}

		pending := retentionDomain.NewDeletionRecord("tenant-1", "usr-100", time.Hour)
		mockDeletions.On("GetBySubject", ctx, "tenant-1", "usr-100").
			Return(pending, nil).
			Once()

		useCase := NewLifecycleUseCase(mockDeletions, mockDocuments, mockAudit, 0, slog.Default())
		record, err := useCase.SoftDelete(ctx, "tenant-1", "usr-100")

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
		assert.Nil(t, record)
		mockDeletions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		mockDocuments.AssertNotCalled(t, "Archive", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_SubjectAlreadyAnonymized", func(t *testing.T) {
		mockDeletions := &mockDeletionRepository{}
		mockDocuments := &mockDocumentStore{}
		mockAudit := &mockAuditUseCase{}

		finished := retentionDomain.NewDeletionRecord("tenant-1", "usr-100", -time.Hour)
		finished.Anonymize(time.Now().UTC())

		mockDeletions.On("GetBySubject", ctx, "tenant-1", "usr-100").
			Return(finished, nil).
			Once()

		useCase := NewLifecycleUseCase(mockDeletions, mockDocuments, mockAudit, 0, slog.Default())
		record, err := useCase.SoftDelete(ctx, "tenant-1", "usr-100")

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
		assert.Nil(t, record)
		mockDeletions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Error_HistoryLookupFails", func(t *testing.T) {
		mockDeletions := &mockDeletionRepository{}
		mockDocuments := &mockDocumentStore{}
		mockAudit := &mockAuditUseCase{}

		mockDeletions.On("GetBySubject", ctx, "tenant-1", "usr-100").
			Return(nil, errors.New("connection refused")).
			Once()

		useCase := NewLifecycleUseCase(mockDeletions, mockDocuments, mockAudit, 0, slog.Default())
		record, err := useCase.SoftDelete(ctx, "tenant-1", "usr-100")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to check deletion history")
		assert.Nil(t, record)
	})

	t.Run("Error_CreateFails", func(t *testing.T) {
		mockDeletions := &mockDeletionRepository{}
		mockDocuments := &mockDocumentStore{}
		mockAudit := &mockAuditUseCase{}

		mockDeletions.On("GetBySubject", ctx, "tenant-1", "usr-100").
			Return(nil, apperrors.ErrNotFound).
			Once()
		mockDeletions.On("Create", ctx, mock.AnythingOfType("*domain.DeletionRecord")).
			Return(errors.New("insert failed")).
			Once()

		useCase := NewLifecycleUseCase(mockDeletions, mockDocuments, mockAudit, 0, slog.Default())
		record, err := useCase.SoftDelete(ctx, "tenant-1", "usr-100")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create deletion record")
		assert.Nil(t, record)
		mockDocuments.AssertNotCalled(t, "Archive", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_ArchiveFails", func(t *testing.T) {
		mockDeletions := &mockDeletionRepository{}
		mockDocuments := &mockDocumentStore{}
		mockAudit := &mockAuditUseCase{}

		mockDeletions.On("GetBySubject", ctx, "tenant-1", "usr-100").
			Return(nil, apperrors.ErrNotFound).
			Once()
		mockDeletions.On("Create", ctx, mock.AnythingOfType("*domain.DeletionRecord")).
			Return(nil).
			Once()
		mockDocuments.On("Archive", ctx, personalPath, mock.AnythingOfType("time.Time")).
			Return(errors.New("connection reset")).
			Once()

		useCase := NewLifecycleUseCase(mockDeletions, mockDocuments, mockAudit, 0, slog.Default())
		record, err := useCase.SoftDelete(ctx, "tenant-1", "usr-100")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to archive personal settings document")
		assert.Nil(t, record)
		mockAudit.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})

	t.Run("Success_AuditFailureTolerated", func(t *testing.T) {
		mockDeletions := &mockDeletionRepository{}
		mockDocuments := &mockDocumentStore{}
		mockAudit := &mockAuditUseCase{}

		mockDeletions.On("GetBySubject", ctx, "tenant-1", "usr-100").
			Return(nil, apperrors.ErrNotFound).
			Once()
		mockDeletions.On("Create", ctx, mock.AnythingOfType("*domain.DeletionRecord")).
			Return(nil).
			Once()
		mockDocuments.On("Archive", ctx, personalPath, mock.AnythingOfType("time.Time")).
			Return(nil).
			Once()
		mockAudit.On("Record", ctx, mock.AnythingOfType("*domain.Event")).
			Return(errors.New("audit store down")).
			Once()

		useCase := NewLifecycleUseCase(mockDeletions, mockDocuments, mockAudit, 0, slog.Default())
		record, err := useCase.SoftDelete(ctx, "tenant-1", "usr-100")

		require.NoError(t, err)
		assert.Equal(t, retentionDomain.StatusSoftDeleted, record.Status)
	})
}

func TestLifecycleUseCase_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockDeletions := &mockDeletionRepository{}
		mockDocuments := &mockDocumentStore{}
		mockAudit := &mockAuditUseCase{}

		pending := retentionDomain.NewDeletionRecord("tenant-1", "usr-100", time.Hour)
		mockDeletions.On("GetBySubject", ctx, "tenant-1", "usr-100").
			Return(pending, nil).
			Once()

		var updated *retentionDomain.DeletionRecord
		mockDeletions.On("Update", ctx, mock.AnythingOfType("*domain.DeletionRecord")).
			Run(func(args mock.Arguments) {
				updated = args.Get(1).(*retentionDomain.DeletionRecord)
			}).
			Return(nil).
			Once()

		mockDocuments.On("Unarchive", ctx, personalPath).
			Return(nil).
			Once()

		var event *auditDomain.Event
		mockAudit.On("Record", ctx, mock.AnythingOfType("*domain.Event")).
			Run(func(args mock.Arguments) {
				event = args.Get(1).(*auditDomain.Event)
			}).
			Return(nil).
			Once()

		useCase := NewLifecycleUseCase(mockDeletions, mockDocuments, mockAudit, 0, slog.Default())
		record, err := useCase.Restore(ctx, "tenant-1", "usr-100")

		require.NoError(t, err)
		assert.Equal(t, retentionDomain.StatusRestored, record.Status)
		require.NotNil(t, updated)
		assert.Equal(t, retentionDomain.StatusRestored, updated.Status)
		require.NotNil(t, event)
		assert.Equal(t, auditDomain.EventRecordRestored, event.Type)
		assert.Equal(t, "usr-100", event.SubjectID)

		mockDeletions.AssertExpectations(t)
		mockDocuments.AssertExpectations(t)
	})

	t.Run("Success_NoPersonalDocument", func(t *testing.T) {
		mockDeletions := &mockDeletionRepository{}
		mockDocuments := &mockDocumentStore{}
		mockAudit := &mockAuditUseCase{}

		pending := retentionDomain.NewDeletionRecord("tenant-1", "usr-100", time.Hour)
		mockDeletions.On("GetBySubject", ctx, "tenant-1", "usr-100").
			Return(pending, nil).
			Once()
		mockDeletions.On("Update", ctx, mock.AnythingOfType("*domain.DeletionRecord")).
			Return(nil).
			Once()
		mockDocuments.On("Unarchive", ctx, personalPath).
			Return(apperrors.ErrNotFound).
			Once()
		mockAudit.On("Record", ctx, mock.AnythingOfType("*domain.Event")).
			Return(nil).
			Once()

		useCase := NewLifecycleUseCase(mockDeletions, mockDocuments, mockAudit, 0, slog.Default())
		record, err := useCase.Restore(ctx, "tenant-1", "usr-100")

		require.NoError(t, err)
		assert.Equal(t, retentionDomain.StatusRestored, record.Status)
	})

	t.Run("Error_NothingPending", func(t *testing.T) {
		mockDeletions := &mockDeletionRepository{}
		mockDocuments := &mockDocumentStore{}
		mockAudit := &mockAuditUseCase{}

		mockDeletions.On("GetBySubject", ctx, "tenant-1", "usr-100").
			Return(nil, apperrors.ErrNotFound).
			Once()

		useCase := NewLifecycleUseCase(mockDeletions, mockDocuments, mockAudit, 0, slog.Default())
		record, err := useCase.Restore(ctx, "tenant-1", "usr-100")

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
		assert.Contains(t, err.Error(), "no deletion pending for subject")
		assert.Nil(t, record)
		mockDeletions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Error_GracePeriodExpired", func(t *testing.T) {
		mockDeletions := &mockDeletionRepository{}
		mockDocuments := &mockDocumentStore{}
		mockAudit := &mockAuditUseCase{}

		expired := retentionDomain.NewDeletionRecord("tenant-1", "usr-100", -time.Hour)
		mockDeletions.On("GetBySubject", ctx, "tenant-1", "usr-100").
			Return(expired, nil).
			Once()

		useCase := NewLifecycleUseCase(mockDeletions, mockDocuments, mockAudit, 0, slog.Default())
		record, err := useCase.Restore(ctx, "tenant-1", "usr-100")

		require.Error(t, err)
		assert.ErrorIs(t, err, retentionDomain.ErrGracePeriodExpired)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
		assert.Nil(t, record)
		mockDeletions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		mockDocuments.AssertNotCalled(t, "Unarchive", mock.Anything, mock.Anything)
	})

	t.Run("Error_AlreadyAnonymized", func(t *testing.T) {
		mockDeletions := &mockDeletionRepository{}
		mockDocuments := &mockDocumentStore{}
		mockAudit := &mockAuditUseCase{}

		finished := retentionDomain.NewDeletionRecord("tenant-1", "usr-100", -time.Hour)
		finished.Anonymize(time.Now().UTC())
		mockDeletions.On("GetBySubject", ctx, "tenant-1", "usr-100").
			Return(finished, nil).
			Once()

		useCase := NewLifecycleUseCase(mockDeletions, mockDocuments, mockAudit, 0, slog.Default())
		record, err := useCase.Restore(ctx, "tenant-1", "usr-100")

		require.Error(t, err)
		assert.ErrorIs(t, err, retentionDomain.ErrGracePeriodExpired)
		assert.Nil(t, record)
	})

	t.Run("Error_AlreadyRestored", func(t *testing.T) {
		mockDeletions := &mockDeletionRepository{}
		mockDocuments := &mockDocumentStore{}
		mockAudit := &mockAuditUseCase{}

		restored := retentionDomain.NewDeletionRecord("tenant-1", "usr-100", time.Hour)
		require.NoError(t, restored.Restore(time.Now().UTC()))
		mockDeletions.On("GetBySubject", ctx, "tenant-1", "usr-100").
			Return(restored, nil).
			Once()

		useCase := NewLifecycleUseCase(mockDeletions, mockDocuments, mockAudit, 0, slog.Default())
		record, err := useCase.Restore(ctx, "tenant-1", "usr-100")

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
		assert.Nil(t, record)
	})

	t.Run("Error_UpdateFails", func(t *testing.T) {
		mockDeletions := &mockDeletionRepository{}
		mockDocuments := &mockDocumentStore{}
		mockAudit := &mockAuditUseCase{}

		pending := retentionDomain.NewDeletionRecord("tenant-1", "usr-100", time.Hour)
		mockDeletions.On("GetBySubject", ctx, "tenant-1", "usr-100").
			Return(pending, nil).
			Once()
		mockDeletions.On("Update", ctx, mock.AnythingOfType("*domain.DeletionRecord")).
			Return(errors.New("write conflict")).
			Once()

		useCase := NewLifecycleUseCase(mockDeletions, mockDocuments, mockAudit, 0, slog.Default())
		record, err := useCase.Restore(ctx, "tenant-1", "usr-100")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to update deletion record")
		assert.Nil(t, record)
		mockDocuments.AssertNotCalled(t, "Unarchive", mock.Anything, mock.Anything)
	})
}
