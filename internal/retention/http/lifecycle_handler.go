// Package http provides the HTTP surface of the deletion lifecycle: subject
// soft deletion and restore for personal settings. Both routes are user-scoped,
// so the guard chain only admits the subject acting on their own record, and
// both demand a step-up verified session like every personal-settings write.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/innwise/fieldvault/internal/errors"
	guardDomain "github.com/innwise/fieldvault/internal/guard/domain"
	guardHTTP "github.com/innwise/fieldvault/internal/guard/http"
	"github.com/innwise/fieldvault/internal/httputil"
	"github.com/innwise/fieldvault/internal/retention/http/dto"
	retentionUseCase "github.com/innwise/fieldvault/internal/retention/usecase"
)

// GuardFactory builds the middleware protecting one guarded operation. The
// server supplies it so route registration stays free of guard wiring.
type GuardFactory func(op *guardDomain.Operation) gin.HandlerFunc

// LifecycleHandler handles HTTP requests for the deletion lifecycle.
type LifecycleHandler struct {
	lifecycleUseCase retentionUseCase.LifecycleUseCase
	logger           *slog.Logger
}

// NewLifecycleHandler creates a new lifecycle handler with required dependencies.
func NewLifecycleHandler(lifecycleUseCase retentionUseCase.LifecycleUseCase, logger *slog.Logger) *LifecycleHandler {
	return &LifecycleHandler{
		lifecycleUseCase: lifecycleUseCase,
		logger:           logger,
	}
}

// RegisterRoutes attaches the lifecycle routes under the given router. The
// record id segment is the subject id; deletion runs behind the delete guard
// and restore behind the update guard, so restoring counts as a write in the
// access audit trail.
func (h *LifecycleHandler) RegisterRoutes(router gin.IRouter, guardFor GuardFactory) error {
	ops, err := guardDomain.OperationsFor("personal-settings")
	if err != nil {
		return err
	}

	group := router.Group("/personal-settings")
	group.DELETE("/:tenantId/:recordId", guardFor(ops.Delete), h.SoftDeleteHandler)
	group.POST("/:tenantId/:recordId/restore", guardFor(ops.Update), h.RestoreHandler)

	return nil
}

// SoftDeleteHandler starts the deletion lifecycle for the caller's personal
// settings. The stored document is hidden immediately; anonymization follows
// once the grace period ends, unless the subject restores first.
// DELETE /v1/personal-settings/{tenantId}/{subjectId}
// Returns 202 Accepted with the pending deletion.
func (h *LifecycleHandler) SoftDeleteHandler(c *gin.Context) {
	if !h.guardRan(c) {
		return
	}

	record, err := h.lifecycleUseCase.SoftDelete(
		c.Request.Context(),
		c.Param("tenantId"),
		c.Param("recordId"),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusAccepted, dto.MapDeletionToResponse(record))
}

// RestoreHandler cancels a pending deletion within its grace period and makes
// the subject's personal settings readable again.
// POST /v1/personal-settings/{tenantId}/{subjectId}/restore
// Returns 200 OK with the restored deletion record.
func (h *LifecycleHandler) RestoreHandler(c *gin.Context) {
	if !h.guardRan(c) {
		return
	}

	record, err := h.lifecycleUseCase.Restore(
		c.Request.Context(),
		c.Param("tenantId"),
		c.Param("recordId"),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDeletionToResponse(record))
}

// guardRan confirms the guard middleware produced a grant. A missing grant
// means the route was registered without its guard, which is a wiring defect,
// not a client error.
func (h *LifecycleHandler) guardRan(c *gin.Context) bool {
	if _, ok := guardHTTP.GetGrant(c.Request.Context()); !ok {
		err := apperrors.Wrap(apperrors.ErrConfiguration, "route registered without the guard chain")
		httputil.HandleErrorGin(c, err, h.logger)
		return false
	}
	return true
}
