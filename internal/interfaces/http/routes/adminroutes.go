package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/permission"
	marketplaceHandlers "github.com/fachwerk-hq/fachwerk/internal/interfaces/http/handlers/marketplace"
)

// AdminRouteConfig holds dependencies for admin-only routes.
type AdminRouteConfig struct {
	AdminHandler *marketplaceHandlers.AdminHandler
	Guards       *Guards
}

// SetupAdminRoutes configures admin-only routes.
func SetupAdminRoutes(engine *gin.Engine, cfg *AdminRouteConfig) {
	g := cfg.Guards

	adminRequests := engine.Group("/admin/requests")
	adminRequests.Use(g.authenticated()...)
	adminRequests.Use(g.can(permission.ObjectAdmin, permission.ActionWrite))
	{
		adminRequests.POST("/:id/resolve-problem", cfg.AdminHandler.ResolveProblem)
		adminRequests.POST("/:id/invoice-events", cfg.AdminHandler.RecordInvoiceEvent)
	}
}
