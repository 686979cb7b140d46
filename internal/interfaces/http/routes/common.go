package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/fachwerk-hq/fachwerk/internal/interfaces/http/middleware"
)

// Guards bundles the middlewares every authenticated marketplace group uses.
type Guards struct {
	Auth       *middleware.AuthMiddleware
	Permission *middleware.PermissionMiddleware
	RateLimit  *middleware.RateLimitMiddleware // may be nil
}

// authenticated returns the group-level chain: caller resolution, then rate limiting.
func (g *Guards) authenticated() []gin.HandlerFunc {
	chain := []gin.HandlerFunc{g.Auth.RequireAuth()}
	if g.RateLimit != nil {
		chain = append(chain, g.RateLimit.Limit())
	}
	return chain
}

func (g *Guards) can(object, action string) gin.HandlerFunc {
	return g.Permission.RequirePermission(object, action)
}
