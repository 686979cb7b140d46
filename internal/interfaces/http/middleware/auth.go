package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/fachwerk-hq/fachwerk/internal/domain/identity"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/auth"
	"github.com/fachwerk-hq/fachwerk/internal/shared/constants"
	"github.com/fachwerk-hq/fachwerk/internal/shared/errors"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
	"github.com/fachwerk-hq/fachwerk/internal/shared/utils"
)

type callerResolver interface {
	ResolveCaller(ctx context.Context, bearerToken string) (identity.Caller, error)
}

type AuthMiddleware struct {
	resolver callerResolver
	logger   logger.Interface
}

func NewAuthMiddleware(resolver callerResolver, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		resolver: resolver,
		logger:   logger,
	}
}

// RequireAuth resolves the caller from the Authorization header and rejects
// anonymous requests. The caller is stored on the gin context and on the
// request context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("access_token")
		if header := c.GetHeader(constants.HeaderAuthorization); header != "" {
			token = auth.BearerToken(header)
		}

		caller, err := m.resolver.ResolveCaller(c.Request.Context(), token)
		if err != nil {
			if !errors.IsAppError(err) {
				m.logger.Errorw("failed to resolve caller", "error", err)
			}
			utils.ErrorResponseWithError(c, err)
			c.Abort()
			return
		}
		if !caller.IsAuthenticated() {
			utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("authentication required"))
			c.Abort()
			return
		}

		SetCaller(c, caller)
		c.Next()
	}
}

// SetCaller stores the caller where handlers and downstream middleware read it.
func SetCaller(c *gin.Context, caller identity.Caller) {
	c.Set(constants.ContextKeyCaller, caller)
	c.Set(constants.ContextKeyUserID, caller.UserID())
	c.Request = c.Request.WithContext(identity.WithCaller(c.Request.Context(), caller))
}

// GetCaller returns the resolved caller, or Anonymous outside RequireAuth.
func GetCaller(c *gin.Context) identity.Caller {
	if v, ok := c.Get(constants.ContextKeyCaller); ok {
		if caller, ok := v.(identity.Caller); ok {
			return caller
		}
	}
	return identity.FromContext(c.Request.Context())
}
