package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/permission"
	marketplaceHandlers "github.com/fachwerk-hq/fachwerk/internal/interfaces/http/handlers/marketplace"
)

// RequestRouteConfig holds dependencies for request and application routes.
type RequestRouteConfig struct {
	RequestHandler *marketplaceHandlers.RequestHandler
	Guards         *Guards
}

// SetupRequestRoutes configures the caller, request and application routes.
func SetupRequestRoutes(engine *gin.Engine, cfg *RequestRouteConfig) {
	g := cfg.Guards
	h := cfg.RequestHandler

	engine.GET("/me", g.Auth.RequireAuth(), marketplaceHandlers.Me)

	requests := engine.Group("/requests")
	requests.Use(g.authenticated()...)
	{
		requests.POST("", g.can(permission.ObjectRequest, permission.ActionWrite), h.CreateRequest)
		requests.GET("", g.can(permission.ObjectRequest, permission.ActionRead), h.ListRequests)
		requests.GET("/:id", g.can(permission.ObjectRequest, permission.ActionRead), h.GetRequest)
		requests.DELETE("/:id", g.can(permission.ObjectRequest, permission.ActionWrite), h.DeleteRequest)
		requests.POST("/:id/problem", g.can(permission.ObjectRequest, permission.ActionWrite), h.ReportProblem)
		requests.GET("/:id/applications", g.can(permission.ObjectApplication, permission.ActionRead), h.ListApplications)
	}

	applications := engine.Group("/applications")
	applications.Use(g.authenticated()...)
	{
		applications.POST("", g.can(permission.ObjectApplication, permission.ActionWrite), h.SubmitApplication)
		// Deciding is the request owner's call, so it is guarded as a request write.
		applications.POST("/:id/decision", g.can(permission.ObjectRequest, permission.ActionWrite), h.DecideApplication)
	}
}
