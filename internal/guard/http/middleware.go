package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	auditDomain "github.com/innwise/fieldvault/internal/audit/domain"
	auditUseCase "github.com/innwise/fieldvault/internal/audit/usecase"
	cryptoDomain "github.com/innwise/fieldvault/internal/crypto/domain"
	apperrors "github.com/innwise/fieldvault/internal/errors"
	guardDomain "github.com/innwise/fieldvault/internal/guard/domain"
	guardUseCase "github.com/innwise/fieldvault/internal/guard/usecase"
	identityUseCase "github.com/innwise/fieldvault/internal/identity/usecase"
	"github.com/innwise/fieldvault/internal/httputil"
)

// AuthenticationMiddleware verifies the Bearer credential in the
// Authorization header and stores the resulting identity in the request
// context. Both platform JWTs and service-account tokens are accepted;
// IdentityUseCase.Verify tells them apart.
//
// Every failure surfaces as 401 without disclosing which check failed, and is
// recorded as an authentication_failed security event with the distinct
// internal reason.
func AuthenticationMiddleware(
	identityUC identityUseCase.IdentityUseCase,
	audit auditUseCase.AuditUseCase,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Propagate the request correlation id so audit entries recorded
		// anywhere downstream carry it.
		ctx := auditDomain.WithRequestID(c.Request.Context(), requestid.Get(c))
		c.Request = c.Request.WithContext(ctx)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			recordAuthenticationFailure(ctx, audit, c, "missing_credential", logger)
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthenticated, logger)
			c.Abort()
			return
		}

		// Parse Bearer token (case-insensitive)
		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			recordAuthenticationFailure(ctx, audit, c, "malformed_header", logger)
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthenticated, logger)
			c.Abort()
			return
		}

		credential := authHeader[len(bearerPrefix):]
		if credential == "" {
			recordAuthenticationFailure(ctx, audit, c, "empty_credential", logger)
			logger.Debug("authentication failed: empty bearer credential")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthenticated, logger)
			c.Abort()
			return
		}

		identity, err := identityUC.Verify(ctx, credential)
		if err != nil {
			recordAuthenticationFailure(ctx, audit, c, "invalid_credential", logger)
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx = WithIdentity(ctx, identity)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("subject_id", identity.SubjectID),
			slog.String("kind", string(identity.Kind)))

		c.Next()
	}
}

// recordAuthenticationFailure writes one authentication_failed security
// event. The subject is unknown at this point; the client address goes into
// the metadata and is masked by the audit layer before storage.
func recordAuthenticationFailure(
	ctx context.Context,
	audit auditUseCase.AuditUseCase,
	c *gin.Context,
	reason string,
	logger *slog.Logger,
) {
	err := audit.Record(ctx, &auditDomain.Event{
		Type:    auditDomain.EventAuthenticationFailed,
		Outcome: auditDomain.OutcomeDenied,
		Reason:  reason,
		Metadata: map[string]any{
			"ip":   c.ClientIP(),
			"path": c.Request.URL.Path,
		},
	})
	if err != nil && logger != nil {
		logger.Error("failed to record authentication failure",
			slog.String("reason", reason),
			slog.Any("error", err))
	}
}

// GuardMiddleware runs the authorization chain for one compiled-in operation.
//
// MUST be used after AuthenticationMiddleware. The resource path is assembled
// from the route parameters (tenantId, recordId), never from headers or body
// fields. On success the access grant and the resolved domain key are stored
// in the request context; the key is zeroed when the request completes, and
// the access audit entry is written after the handler with its outcome.
func GuardMiddleware(
	guard guardUseCase.GuardUseCase,
	audit auditUseCase.AuditUseCase,
	op *guardDomain.Operation,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c.Request.Context())
		if !ok || identity == nil {
			logger.Error("guard middleware: no verified identity in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthenticated, logger)
			c.Abort()
			return
		}

		resource := &guardDomain.ResourcePath{
			Collection: op.Collection,
			TenantID:   c.Param("tenantId"),
			RecordID:   c.Param("recordId"),
		}

		grant, key, err := guard.Authorize(c.Request.Context(), op, resource, identity)
		if err != nil {
			logger.Debug("authorization failed",
				slog.String("operation", op.Name),
				slog.String("subject_id", identity.SubjectID),
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithGrant(c.Request.Context(), grant)
		if key != nil {
			ctx = WithDomainKey(ctx, key)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		// The key dies with the request, whatever the handler did.
		cryptoDomain.Zero(key)

		recordAccess(c, audit, grant, resource, logger)
	}
}

// recordAccess writes the access audit entry for a request that passed the
// chain, carrying the handler's outcome. A failed write is logged and
// swallowed rather than failing a request that already completed.
func recordAccess(
	c *gin.Context,
	audit auditUseCase.AuditUseCase,
	grant *guardDomain.AccessGrant,
	resource *guardDomain.ResourcePath,
	logger *slog.Logger,
) {
	outcome := auditDomain.OutcomeSuccess
	status := c.Writer.Status()
	if status >= http.StatusBadRequest {
		outcome = auditDomain.OutcomeFailure
	}

	err := audit.Record(c.Request.Context(), &auditDomain.Event{
		SubjectID: grant.SubjectID,
		TenantID:  grant.TenantID,
		Domain:    grant.Operation.Domain,
		Type:      grant.Operation.Action.AuditEvent(),
		Outcome:   outcome,
		Metadata: map[string]any{
			"path":      resource.String(),
			"operation": grant.Operation.Name,
			"status":    status,
		},
	})
	if err != nil && logger != nil {
		logger.Error("failed to record access audit entry",
			slog.String("operation", grant.Operation.Name),
			slog.Any("error", err))
	}
}
