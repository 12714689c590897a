// Package http serves the audit trail query API. The single read route is
// admin-only and runs behind the same guard chain as the record routes, so
// reading the audit trail is itself an audited access.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	auditDomain "github.com/innwise/fieldvault/internal/audit/domain"
	"github.com/innwise/fieldvault/internal/audit/http/dto"
	auditUseCase "github.com/innwise/fieldvault/internal/audit/usecase"
	apperrors "github.com/innwise/fieldvault/internal/errors"
	guardDomain "github.com/innwise/fieldvault/internal/guard/domain"
	guardHTTP "github.com/innwise/fieldvault/internal/guard/http"
	"github.com/innwise/fieldvault/internal/httputil"
)

// GuardFactory builds the middleware protecting one guarded operation. The
// server supplies it so route registration stays free of guard wiring.
type GuardFactory func(op *guardDomain.Operation) gin.HandlerFunc

// EntryHandler handles HTTP requests for the audit trail.
type EntryHandler struct {
	auditUseCase auditUseCase.AuditUseCase
	logger       *slog.Logger
}

// NewEntryHandler creates a new audit entry handler with required dependencies.
func NewEntryHandler(auditUC auditUseCase.AuditUseCase, logger *slog.Logger) *EntryHandler {
	return &EntryHandler{
		auditUseCase: auditUC,
		logger:       logger,
	}
}

// RegisterRoutes attaches the audit trail route under the given router.
func (h *EntryHandler) RegisterRoutes(router gin.IRouter, guardFor GuardFactory) {
	router.GET("/audit-entries/:tenantId", guardFor(guardDomain.AuditReadOperation()), h.ListHandler)
}

// ListHandler retrieves a tenant's audit entries newest first.
// GET /v1/audit-entries/{tenantId}?offset=0&limit=50&category=security&from=...&to=...
// Returns 200 OK with entries; category and the RFC 3339 time bounds are
// optional filters.
func (h *EntryHandler) ListHandler(c *gin.Context) {
	if _, ok := guardHTTP.GetGrant(c.Request.Context()); !ok {
		err := apperrors.Wrap(apperrors.ErrConfiguration, "route registered without the guard chain")
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	category, from, to, err := parseFilters(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	entries, err := h.auditUseCase.List(
		c.Request.Context(),
		offset,
		limit,
		c.Param("tenantId"),
		category,
		from,
		to,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEntriesToListResponse(entries))
}

// parseFilters reads the optional category and time-bound query parameters.
func parseFilters(c *gin.Context) (auditDomain.Category, *time.Time, *time.Time, error) {
	category := auditDomain.Category(c.Query("category"))
	switch category {
	case "", auditDomain.CategoryAccess, auditDomain.CategorySecurity, auditDomain.CategoryLifecycle:
	default:
		return "", nil, nil, fmt.Errorf("unknown category %q", category)
	}

	from, err := parseTimeParam(c, "from")
	if err != nil {
		return "", nil, nil, err
	}

	to, err := parseTimeParam(c, "to")
	if err != nil {
		return "", nil, nil, err
	}

	return category, from, to, nil
}

func parseTimeParam(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}

	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an RFC 3339 timestamp", name)
	}
	return &ts, nil
}
