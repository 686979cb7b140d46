package http

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/fachwerk-hq/fachwerk/docs"
	"github.com/fachwerk-hq/fachwerk/internal/interfaces/http/middleware"
	"github.com/fachwerk-hq/fachwerk/internal/interfaces/http/routes"
)

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	cfg := r.cfg

	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Recovery(r.log))
	r.engine.Use(middleware.AccessLog(r.log))
	r.engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.engine.Use(middleware.SecurityHeaders())
	r.engine.Use(middleware.Metrics(r.metrics))

	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.engine.GET("/health", r.hdlrs.healthHandler.HealthCheck)
	r.engine.GET("/ready", r.hdlrs.healthHandler.Ready)
	r.engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))

	guards := &routes.Guards{
		Auth:       r.authMiddleware,
		Permission: r.permissionMiddleware,
		RateLimit:  r.rateLimitMiddleware,
	}

	routes.SetupRequestRoutes(r.engine, &routes.RequestRouteConfig{
		RequestHandler: r.hdlrs.requestHandler,
		Guards:         guards,
	})

	routes.SetupChatRoutes(r.engine, &routes.ChatRouteConfig{
		ChatHandler:   r.hdlrs.chatHandler,
		StreamHandler: r.hdlrs.streamHandler,
		Guards:        guards,
	})

	routes.SetupOrderRoutes(r.engine, &routes.OrderRouteConfig{
		OrderHandler:  r.hdlrs.orderHandler,
		RatingHandler: r.hdlrs.ratingHandler,
		Guards:        guards,
	})

	routes.SetupAdminRoutes(r.engine, &routes.AdminRouteConfig{
		AdminHandler: r.hdlrs.adminHandler,
		Guards:       guards,
	})
}
