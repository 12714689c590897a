// Package http provides the HTTP surface of the records API: one handler
// serving list projections, codec-backed reads and writes for every guarded
// collection. Handlers run strictly behind the guard chain and read the
// authorized operation and the provisioned domain key from the request
// context; they never resolve keys or evaluate roles themselves.
package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/innwise/fieldvault/internal/errors"
	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
	guardDomain "github.com/innwise/fieldvault/internal/guard/domain"
	guardHTTP "github.com/innwise/fieldvault/internal/guard/http"
	"github.com/innwise/fieldvault/internal/httputil"
	"github.com/innwise/fieldvault/internal/records/http/dto"
	recordsUseCase "github.com/innwise/fieldvault/internal/records/usecase"
)

// GuardFactory builds the middleware protecting one guarded operation. The
// server supplies it so route registration stays free of guard wiring.
type GuardFactory func(op *guardDomain.Operation) gin.HandlerFunc

// tenantCollections are the role-guarded collections served by the full
// list/detail/write route set. Personal settings are user-scoped and
// registered separately without a list route: a user-scoped list has no
// record id to match the caller against and would always be denied.
var tenantCollections = []string{
	"employees",
	"bank-accounts",
	"payroll-entries",
	"company-financials",
}

// RecordHandler handles HTTP requests for the records API.
type RecordHandler struct {
	recordUseCase recordsUseCase.RecordUseCase
	logger        *slog.Logger
}

// NewRecordHandler creates a new record handler with required dependencies.
func NewRecordHandler(recordUseCase recordsUseCase.RecordUseCase, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{
		recordUseCase: recordUseCase,
		logger:        logger,
	}
}

// RegisterRoutes attaches the records API routes under the given router.
// Every route runs behind the guard middleware built for its operation.
func (h *RecordHandler) RegisterRoutes(router gin.IRouter, guardFor GuardFactory) error {
	for _, collection := range tenantCollections {
		ops, err := guardDomain.OperationsFor(collection)
		if err != nil {
			return err
		}

		group := router.Group("/" + collection)
		group.GET("/:tenantId", guardFor(ops.List), h.ListHandler)
		group.GET("/:tenantId/:recordId", guardFor(ops.View), h.GetHandler)
		group.PUT("/:tenantId/:recordId", guardFor(ops.Create), h.PutHandler)
		group.PATCH("/:tenantId/:recordId", guardFor(ops.Update), h.PatchHandler)
		group.DELETE("/:tenantId/:recordId", guardFor(ops.Delete), h.DeleteHandler)
	}

	// User-scoped routes; the record id segment is the subject id. Deletion
	// is not served here: personal settings leave through the retention
	// lifecycle, never through a hard delete.
	personalOps, err := guardDomain.OperationsFor("personal-settings")
	if err != nil {
		return err
	}

	personal := router.Group("/personal-settings")
	personal.GET("/:tenantId/:recordId", guardFor(personalOps.View), h.GetHandler)
	personal.PUT("/:tenantId/:recordId", guardFor(personalOps.Create), h.PutHandler)
	personal.PATCH("/:tenantId/:recordId", guardFor(personalOps.Update), h.PatchHandler)

	return nil
}

// ListHandler retrieves allow-list projections of a tenant's records.
// GET /v1/{collection}/{tenantId}?offset=0&limit=50
// Returns 200 OK with projected summaries; sensitive fields are absent.
func (h *RecordHandler) ListHandler(c *gin.Context) {
	grant, ok := h.grantFrom(c)
	if !ok {
		return
	}

	coords := dto.ListCoordinates{TenantID: c.Param("tenantId")}
	if err := coords.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	summaries, err := h.recordUseCase.List(
		c.Request.Context(),
		grant.Operation.Collection,
		coords.TenantID,
		offset,
		limit,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSummariesToListResponse(summaries))
}

// GetHandler retrieves a record with sensitive fields opened under the
// guard-provisioned domain key.
// GET /v1/{collection}/{tenantId}/{recordId}
// Returns 200 OK with the full record.
func (h *RecordHandler) GetHandler(c *gin.Context) {
	grant, key, ok := h.grantAndKeyFrom(c)
	if !ok {
		return
	}

	coords, ok := h.coordinatesFrom(c)
	if !ok {
		return
	}

	detail, err := h.recordUseCase.Get(
		c.Request.Context(),
		grant.Operation.Collection,
		coords.TenantID,
		coords.RecordID,
		key,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDetailToResponse(detail))
}

// PutHandler creates or replaces a record. Sensitive fields are sealed
// before storage; the response acknowledges coordinates only.
// PUT /v1/{collection}/{tenantId}/{recordId}
// Returns 200 OK with a write receipt.
func (h *RecordHandler) PutHandler(c *gin.Context) {
	grant, key, ok := h.grantAndKeyFrom(c)
	if !ok {
		return
	}

	coords, ok := h.coordinatesFrom(c)
	if !ok {
		return
	}

	data, err := bindRecord(c, grant.Operation.Collection)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	receipt, err := h.recordUseCase.Put(
		c.Request.Context(),
		grant.Operation.Collection,
		coords.TenantID,
		coords.RecordID,
		data,
		key,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapReceiptToResponse(receipt))
}

// PatchHandler merge-updates an existing record.
// PATCH /v1/{collection}/{tenantId}/{recordId}
// Returns 200 OK with a write receipt.
func (h *RecordHandler) PatchHandler(c *gin.Context) {
	grant, key, ok := h.grantAndKeyFrom(c)
	if !ok {
		return
	}

	coords, ok := h.coordinatesFrom(c)
	if !ok {
		return
	}

	patch, err := bindRecord(c, grant.Operation.Collection)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	receipt, err := h.recordUseCase.Patch(
		c.Request.Context(),
		grant.Operation.Collection,
		coords.TenantID,
		coords.RecordID,
		patch,
		key,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapReceiptToResponse(receipt))
}

// DeleteHandler removes a record.
// DELETE /v1/{collection}/{tenantId}/{recordId}
// Returns 204 No Content.
func (h *RecordHandler) DeleteHandler(c *gin.Context) {
	grant, ok := h.grantFrom(c)
	if !ok {
		return
	}

	coords, ok := h.coordinatesFrom(c)
	if !ok {
		return
	}

	err := h.recordUseCase.Delete(
		c.Request.Context(),
		grant.Operation.Collection,
		coords.TenantID,
		coords.RecordID,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// grantFrom reads the access grant set by the guard middleware. A missing
// grant means the route was registered without its guard, which is a wiring
// defect, not a client error.
func (h *RecordHandler) grantFrom(c *gin.Context) (*guardDomain.AccessGrant, bool) {
	grant, ok := guardHTTP.GetGrant(c.Request.Context())
	if !ok {
		err := apperrors.Wrap(apperrors.ErrConfiguration, "route registered without the guard chain")
		httputil.HandleErrorGin(c, err, h.logger)
		return nil, false
	}
	return grant, true
}

// grantAndKeyFrom reads the grant and the provisioned domain key.
func (h *RecordHandler) grantAndKeyFrom(c *gin.Context) (*guardDomain.AccessGrant, []byte, bool) {
	grant, ok := h.grantFrom(c)
	if !ok {
		return nil, nil, false
	}

	key, ok := guardHTTP.GetDomainKey(c.Request.Context())
	if !ok {
		err := apperrors.Wrap(apperrors.ErrConfiguration, "no domain key provisioned for the request")
		httputil.HandleErrorGin(c, err, h.logger)
		return nil, nil, false
	}
	return grant, key, true
}

// coordinatesFrom validates the tenant and record path segments.
func (h *RecordHandler) coordinatesFrom(c *gin.Context) (*dto.Coordinates, bool) {
	coords := &dto.Coordinates{
		TenantID: c.Param("tenantId"),
		RecordID: c.Param("recordId"),
	}
	if err := coords.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return nil, false
	}
	return coords, true
}

// bindRecord decodes the request body as a JSON object. Numbers decode as
// json.Number so account numbers and monetary values keep their exact form
// through the seal-open round trip.
func bindRecord(c *gin.Context, collection string) (fieldcryptDomain.Record, error) {
	decoder := json.NewDecoder(c.Request.Body)
	decoder.UseNumber()

	var body map[string]any
	if err := decoder.Decode(&body); err != nil {
		return nil, fmt.Errorf("request body must be a JSON object: %w", err)
	}

	record := fieldcryptDomain.Record(body)
	if collection == "bank-accounts" {
		if err := dto.ValidateBankingFields(record); err != nil {
			return nil, err
		}
	}

	return record, nil
}
