package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dorian/quill/internal/domain"
	"github.com/dorian/quill/internal/identity"
	"github.com/dorian/quill/internal/logger"
	"github.com/gin-gonic/gin"
)

const callerKey = "caller"

// CallerResolver validates a bearer token with the identity provider.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, token string) (*domain.Caller, error)
}

// UsageReader reads the caller's current free-tier usage count.
type UsageReader interface {
	Usage(ctx context.Context, userID string) (int, error)
}

// Auth resolves the bearer token and attaches the caller (user id, plan and
// current free usage) to the request. Requests without a valid token never
// reach a handler.
func Auth(resolver CallerResolver, usage UsageReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authorization header missing or invalid",
			})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		caller, err := resolver.ResolveCaller(c.Request.Context(), token)
		if err != nil {
			msg := "Authentication failed"
			if errors.Is(err, identity.ErrUnauthorized) {
				msg = "Invalid token"
			} else {
				logger.CtxError(c.Request.Context(), "Identity resolution failed: %v", err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": msg,
			})
			return
		}

		// Premium callers are never counted, skip the ledger read for them.
		if !caller.Plan.IsPremium() {
			count, err := usage.Usage(c.Request.Context(), caller.UserID)
			if err != nil {
				logger.CtxError(c.Request.Context(), "Usage lookup failed: %v", err)
				c.AbortWithStatusJSON(http.StatusOK, gin.H{
					"success": false,
					"message": err.Error(),
				})
				return
			}
			caller.FreeUsage = count
		}

		ctx := logger.WithField(c.Request.Context(), logger.FieldUserID, caller.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(callerKey, *caller)
		c.Next()
	}
}

// GetCaller extracts the authenticated caller attached by Auth.
func GetCaller(c *gin.Context) (domain.Caller, bool) {
	val, exists := c.Get(callerKey)
	if !exists {
		return domain.Caller{}, false
	}
	caller, ok := val.(domain.Caller)
	return caller, ok
}
