package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/innwise/fieldvault/internal/errors"
	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
	guardDomain "github.com/innwise/fieldvault/internal/guard/domain"
	guardHTTP "github.com/innwise/fieldvault/internal/guard/http"
	recordsUseCase "github.com/innwise/fieldvault/internal/records/usecase"
)

// mockRecordUseCase is a mock implementation of recordsUseCase.RecordUseCase.
type mockRecordUseCase struct {
	mock.Mock
}

func (m *mockRecordUseCase) List(
	ctx context.Context,
	collection, tenantID string,
	offset, limit int,
) ([]*recordsUseCase.RecordSummary, error) {
	args := m.Called(ctx, collection, tenantID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*recordsUseCase.RecordSummary), args.Error(1)
}

func (m *mockRecordUseCase) Get(
	ctx context.Context,
	collection, tenantID, recordID string,
	secret []byte,
) (*recordsUseCase.RecordDetail, error) {
	args := m.Called(ctx, collection, tenantID, recordID, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsUseCase.RecordDetail), args.Error(1)
}

func (m *mockRecordUseCase) Put(
	ctx context.Context,
	collection, tenantID, recordID string,
	data fieldcryptDomain.Record,
	secret []byte,
) (*recordsUseCase.WriteReceipt, error) {
	args := m.Called(ctx, collection, tenantID, recordID, data, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsUseCase.WriteReceipt), args.Error(1)
}

func (m *mockRecordUseCase) Patch(
	ctx context.Context,
	collection, tenantID, recordID string,
	patch fieldcryptDomain.Record,
	secret []byte,
) (*recordsUseCase.WriteReceipt, error) {
	args := m.Called(ctx, collection, tenantID, recordID, patch, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsUseCase.WriteReceipt), args.Error(1)
}

func (m *mockRecordUseCase) Delete(ctx context.Context, collection, tenantID, recordID string) error {
	args := m.Called(ctx, collection, tenantID, recordID)
	return args.Error(0)
}

func (m *mockRecordUseCase) ReencryptBatch(
	ctx context.Context,
	collection string,
	decryptSecret, encryptSecret []byte,
	cutoff time.Time,
	batchSize int,
) (*recordsUseCase.ReencryptReport, error) {
	args := m.Called(ctx, collection, decryptSecret, encryptSecret, cutoff, batchSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsUseCase.ReencryptReport), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testKey() []byte {
	return []byte("hr-domain-key-0123456789abcdef-1")
}

// injectGrantAndKey stands in for the guard middleware: it stores an access
// grant and a domain key on the request context.
func injectGrantAndKey(op *guardDomain.Operation, key []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		grant := &guardDomain.AccessGrant{
			SubjectID: "usr-100",
			TenantID:  "tenant-1",
			Operation: op,
		}
		ctx := guardHTTP.WithGrant(c.Request.Context(), grant)
		if key != nil {
			ctx = guardHTTP.WithDomainKey(ctx, key)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func employeeOps(t *testing.T) *guardDomain.CollectionOperations {
	t.Helper()

	ops, err := guardDomain.OperationsFor("employees")
	require.NoError(t, err)
	return ops
}

func TestRecordHandler_ListHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		mockUseCase := &mockRecordUseCase{}
		mockUseCase.On("List", mock.Anything, "employees", "tenant-1", 0, 50).
			Return([]*recordsUseCase.RecordSummary{
				{
					RecordID:  "emp-100",
					Data:      fieldcryptDomain.Record{"displayName": "Priya Shah", "department": "Front Office"},
					UpdatedAt: time.Now().UTC(),
				},
			}, nil).
			Once()

		handler := NewRecordHandler(mockUseCase, testLogger())
		router := gin.New()
		router.GET("/v1/employees/:tenantId", injectGrantAndKey(employeeOps(t).List, nil), handler.ListHandler)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/employees/tenant-1", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, `"record_id":"emp-100"`)
		assert.Contains(t, body, "Priya Shah")
		assert.NotContains(t, body, "nationalInsuranceNumber")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidPagination", func(t *testing.T) {
		mockUseCase := &mockRecordUseCase{}

		handler := NewRecordHandler(mockUseCase, testLogger())
		router := gin.New()
		router.GET("/v1/employees/:tenantId", injectGrantAndKey(employeeOps(t).List, nil), handler.ListHandler)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/employees/tenant-1?limit=5000", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_MissingGrant", func(t *testing.T) {
		mockUseCase := &mockRecordUseCase{}

		handler := NewRecordHandler(mockUseCase, testLogger())
		router := gin.New()
		// Route registered without the guard middleware
		router.GET("/v1/employees/:tenantId", handler.ListHandler)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/employees/tenant-1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "configuration_error")
	})

	t.Run("Error_UseCaseFailure", func(t *testing.T) {
		mockUseCase := &mockRecordUseCase{}
		mockUseCase.On("List", mock.Anything, "employees", "tenant-1", 0, 50).
			Return(nil, fmt.Errorf("connection lost")).
			Once()

		handler := NewRecordHandler(mockUseCase, testLogger())
		router := gin.New()
		router.GET("/v1/employees/:tenantId", injectGrantAndKey(employeeOps(t).List, nil), handler.ListHandler)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/employees/tenant-1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRecordHandler_GetHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		mockUseCase := &mockRecordUseCase{}
		mockUseCase.On("Get", mock.Anything, "employees", "tenant-1", "emp-100", testKey()).
			Return(&recordsUseCase.RecordDetail{
				Collection: "employees",
				TenantID:   "tenant-1",
				RecordID:   "emp-100",
				Data: fieldcryptDomain.Record{
					"displayName":             "Priya Shah",
					"nationalInsuranceNumber": "QQ123456C",
				},
			}, nil).
			Once()

		handler := NewRecordHandler(mockUseCase, testLogger())
		router := gin.New()
		router.GET(
			"/v1/employees/:tenantId/:recordId",
			injectGrantAndKey(employeeOps(t).View, testKey()),
			handler.GetHandler,
		)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/employees/tenant-1/emp-100", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "QQ123456C")
		assert.NotContains(t, body, "degraded")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_DegradedRecordFlagged", func(t *testing.T) {
		mockUseCase := &mockRecordUseCase{}
		mockUseCase.On("Get", mock.Anything, "employees", "tenant-1", "emp-100", testKey()).
			Return(&recordsUseCase.RecordDetail{
				Collection: "employees",
				TenantID:   "tenant-1",
				RecordID:   "emp-100",
				Data:       fieldcryptDomain.Record{"displayName": "Priya Shah"},
				Degraded:   true,
			}, nil).
			Once()

		handler := NewRecordHandler(mockUseCase, testLogger())
		router := gin.New()
		router.GET(
			"/v1/employees/:tenantId/:recordId",
			injectGrantAndKey(employeeOps(t).View, testKey()),
			handler.GetHandler,
		)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/employees/tenant-1/emp-100", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"degraded":true`)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		mockUseCase := &mockRecordUseCase{}
		mockUseCase.On("Get", mock.Anything, "employees", "tenant-1", "emp-404", testKey()).
			Return(nil, apperrors.ErrNotFound).
			Once()

		handler := NewRecordHandler(mockUseCase, testLogger())
		router := gin.New()
		router.GET(
			"/v1/employees/:tenantId/:recordId",
			injectGrantAndKey(employeeOps(t).View, testKey()),
			handler.GetHandler,
		)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/employees/tenant-1/emp-404", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_MissingDomainKey", func(t *testing.T) {
		mockUseCase := &mockRecordUseCase{}

		handler := NewRecordHandler(mockUseCase, testLogger())
		router := gin.New()
		router.GET(
			"/v1/employees/:tenantId/:recordId",
			injectGrantAndKey(employeeOps(t).View, nil),
			handler.GetHandler,
		)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/employees/tenant-1/emp-100", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "configuration_error")
		mockUseCase.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_MalformedRecordID", func(t *testing.T) {
		mockUseCase := &mockRecordUseCase{}

		handler := NewRecordHandler(mockUseCase, testLogger())
		router := gin.New()
		router.GET(
			"/v1/employees/:tenantId/:recordId",
			injectGrantAndKey(employeeOps(t).View, testKey()),
			handler.GetHandler,
		)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/employees/tenant-1/emp%20100", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRecordHandler_PutHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success_NumbersKeepExactForm", func(t *testing.T) {
		mockUseCase := &mockRecordUseCase{}
		var bound fieldcryptDomain.Record
		mockUseCase.On("Put", mock.Anything, "employees", "tenant-1", "emp-100", mock.AnythingOfType("domain.Record"), testKey()).
			Run(func(args mock.Arguments) {
				bound = args.Get(4).(fieldcryptDomain.Record)
			}).
			Return(&recordsUseCase.WriteReceipt{
				Collection: "employees",
				TenantID:   "tenant-1",
				RecordID:   "emp-100",
			}, nil).
			Once()

		handler := NewRecordHandler(mockUseCase, testLogger())
		router := gin.New()
		router.PUT(
			"/v1/employees/:tenantId/:recordId",
			injectGrantAndKey(employeeOps(t).Create, testKey()),
			handler.PutHandler,
		)

		body := `{"displayName":"Priya Shah","salary":{"annualAmount":52000.10}}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/v1/employees/tenant-1/emp-100", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		require.NotNil(t, bound)
		amount, ok := bound.Get("salary.annualAmount")
		require.True(t, ok)
		assert.Equal(t, json.Number("52000.10"), amount)

		// The receipt echoes coordinates, never record data
		response := w.Body.String()
		assert.Contains(t, response, `"record_id":"emp-100"`)
		assert.NotContains(t, response, "Priya Shah")
		assert.NotContains(t, response, "52000.10")
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		mockUseCase := &mockRecordUseCase{}

		handler := NewRecordHandler(mockUseCase, testLogger())
		router := gin.New()
		router.PUT(
			"/v1/employees/:tenantId/:recordId",
			injectGrantAndKey(employeeOps(t).Create, testKey()),
			handler.PutHandler,
		)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/v1/employees/tenant-1/emp-100", strings.NewReader(`{"broken"`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_BodyNotAnObject", func(t *testing.T) {
		mockUseCase := &mockRecordUseCase{}

		handler := NewRecordHandler(mockUseCase, testLogger())
		router := gin.New()
		router.PUT(
			"/v1/employees/:tenantId/:recordId",
			injectGrantAndKey(employeeOps(t).Create, testKey()),
			handler.PutHandler,
		)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/v1/employees/tenant-1/emp-100", strings.NewReader(`["not","an","object"]`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Success_BankingFieldsAccepted", func(t *testing.T) {
		mockUseCase := &mockRecordUseCase{}
		mockUseCase.On("Put", mock.Anything, "bank-accounts", "tenant-1", "acct-100", mock.AnythingOfType("domain.Record"), testKey()).
			Return(&recordsUseCase.WriteReceipt{
				Collection: "bank-accounts",
				TenantID:   "tenant-1",
				RecordID:   "acct-100",
			}, nil).
			Once()

		ops, err := guardDomain.OperationsFor("bank-accounts")
		require.NoError(t, err)

		handler := NewRecordHandler(mockUseCase, testLogger())
		router := gin.New()
		router.PUT(
			"/v1/bank-accounts/:tenantId/:recordId",
			injectGrantAndKey(ops.Create, testKey()),
			handler.PutHandler,
		)

		body := `{"bankName":"Barclays","sortCode":"12-34-56","accountNumber":"12345678"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/v1/bank-accounts/tenant-1/acct-100", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_MalformedSortCode", func(t *testing.T) {
		mockUseCase := &mockRecordUseCase{}

		ops, err := guardDomain.OperationsFor("bank-accounts")
		require.NoError(t, err)

		handler := NewRecordHandler(mockUseCase, testLogger())
		router := gin.New()
		router.PUT(
			"/v1/bank-accounts/:tenantId/:recordId",
			injectGrantAndKey(ops.Create, testKey()),
			handler.PutHandler,
		)

		body := `{"bankName":"Barclays","sortCode":"12-34"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/v1/bank-accounts/tenant-1/acct-100", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "sortCode")
		mockUseCase.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_IntegrityRefusal", func(t *testing.T) {
		mockUseCase := &mockRecordUseCase{}
		mockUseCase.On("Put", mock.Anything, "employees", "tenant-1", "emp-100", mock.AnythingOfType("domain.Record"), testKey()).
			Return(nil, apperrors.Wrap(apperrors.ErrIntegrity, "refusing to store record with 1 unsealed sensitive fields")).
			Once()

		handler := NewRecordHandler(mockUseCase, testLogger())
		router := gin.New()
		router.PUT(
			"/v1/employees/:tenantId/:recordId",
			injectGrantAndKey(employeeOps(t).Create, testKey()),
			handler.PutHandler,
		)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/v1/employees/tenant-1/emp-100", strings.NewReader(`{"displayName":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "integrity_error")
	})
}

func TestRecordHandler_PatchHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		mockUseCase := &mockRecordUseCase{}
		mockUseCase.On("Patch", mock.Anything, "employees", "tenant-1", "emp-100", mock.AnythingOfType("domain.Record"), testKey()).
			Return(&recordsUseCase.WriteReceipt{
				Collection: "employees",
				TenantID:   "tenant-1",
				RecordID:   "emp-100",
			}, nil).
			Once()

		handler := NewRecordHandler(mockUseCase, testLogger())
		router := gin.New()
		router.PATCH(
			"/v1/employees/:tenantId/:recordId",
			injectGrantAndKey(employeeOps(t).Update, testKey()),
			handler.PatchHandler,
		)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/v1/employees/tenant-1/emp-100", strings.NewReader(`{"jobTitle":"Head Chef"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		mockUseCase := &mockRecordUseCase{}
		mockUseCase.On("Patch", mock.Anything, "employees", "tenant-1", "emp-404", mock.AnythingOfType("domain.Record"), testKey()).
			Return(nil, apperrors.ErrNotFound).
			Once()

		handler := NewRecordHandler(mockUseCase, testLogger())
		router := gin.New()
		router.PATCH(
			"/v1/employees/:tenantId/:recordId",
			injectGrantAndKey(employeeOps(t).Update, testKey()),
			handler.PatchHandler,
		)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/v1/employees/tenant-1/emp-404", strings.NewReader(`{"jobTitle":"Head Chef"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRecordHandler_DeleteHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		mockUseCase := &mockRecordUseCase{}
		mockUseCase.On("Delete", mock.Anything, "employees", "tenant-1", "emp-100").
			Return(nil).
			Once()

		handler := NewRecordHandler(mockUseCase, testLogger())
		router := gin.New()
		router.DELETE(
			"/v1/employees/:tenantId/:recordId",
			injectGrantAndKey(employeeOps(t).Delete, nil),
			handler.DeleteHandler,
		)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/v1/employees/tenant-1/emp-100", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.Bytes())
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		mockUseCase := &mockRecordUseCase{}
		mockUseCase.On("Delete", mock.Anything, "employees", "tenant-1", "emp-404").
			Return(apperrors.ErrNotFound).
			Once()

		handler := NewRecordHandler(mockUseCase, testLogger())
		router := gin.New()
		router.DELETE(
			"/v1/employees/:tenantId/:recordId",
			injectGrantAndKey(employeeOps(t).Delete, nil),
			handler.DeleteHandler,
		)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/v1/employees/tenant-1/emp-404", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRecordHandler_RegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockUseCase := &mockRecordUseCase{}
	handler := NewRecordHandler(mockUseCase, testLogger())

	guarded := make(map[string]int)
	factory := func(op *guardDomain.Operation) gin.HandlerFunc {
		guarded[op.Name]++
		return func(c *gin.Context) { c.Next() }
	}

	router := gin.New()
	require.NoError(t, handler.RegisterRoutes(router.Group("/v1"), factory))

	routes := make(map[string]bool)
	for _, route := range router.Routes() {
		routes[route.Method+" "+route.Path] = true
	}

	// Full route set for the tenant-scoped collections
	for _, collection := range []string{"employees", "bank-accounts", "payroll-entries", "company-financials"} {
		assert.True(t, routes["GET /v1/"+collection+"/:tenantId"], collection)
		assert.True(t, routes["GET /v1/"+collection+"/:tenantId/:recordId"], collection)
		assert.True(t, routes["PUT /v1/"+collection+"/:tenantId/:recordId"], collection)
		assert.True(t, routes["PATCH /v1/"+collection+"/:tenantId/:recordId"], collection)
		assert.True(t, routes["DELETE /v1/"+collection+"/:tenantId/:recordId"], collection)
	}

	// Personal settings: user-scoped detail routes only
	assert.True(t, routes["GET /v1/personal-settings/:tenantId/:recordId"])
	assert.True(t, routes["PUT /v1/personal-settings/:tenantId/:recordId"])
	assert.True(t, routes["PATCH /v1/personal-settings/:tenantId/:recordId"])
	assert.False(t, routes["GET /v1/personal-settings/:tenantId"])
	assert.False(t, routes["DELETE /v1/personal-settings/:tenantId/:recordId"])

	// Every route is guarded by the operation it serves, exactly once
	assert.Equal(t, 1, guarded["employees.list"])
	assert.Equal(t, 1, guarded["employees.view"])
	assert.Equal(t, 1, guarded["employees.create"])
	assert.Equal(t, 1, guarded["employees.update"])
	assert.Equal(t, 1, guarded["employees.delete"])
	assert.Equal(t, 1, guarded["personal-settings.view"])
	assert.Equal(t, 1, guarded["personal-settings.create"])
	assert.Equal(t, 1, guarded["personal-settings.update"])
	assert.Equal(t, 23, len(guarded))
}
