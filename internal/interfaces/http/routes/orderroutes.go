package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/permission"
	marketplaceHandlers "github.com/fachwerk-hq/fachwerk/internal/interfaces/http/handlers/marketplace"
)

// OrderRouteConfig holds dependencies for order and rating routes.
type OrderRouteConfig struct {
	OrderHandler  *marketplaceHandlers.OrderHandler
	RatingHandler *marketplaceHandlers.RatingHandler
	Guards        *Guards
}

// SetupOrderRoutes configures order decisions and ratings.
func SetupOrderRoutes(engine *gin.Engine, cfg *OrderRouteConfig) {
	g := cfg.Guards
	orders := cfg.OrderHandler
	ratings := cfg.RatingHandler

	orderGroup := engine.Group("/orders")
	orderGroup.Use(g.authenticated()...)
	{
		orderGroup.GET("/:orderId", g.can(permission.ObjectOrder, permission.ActionRead), orders.GetOrder)
		orderGroup.POST("/:orderId/cancel", g.can(permission.ObjectOrder, permission.ActionWrite), orders.CancelOrder)
	}

	consumer := engine.Group("/konsument")
	consumer.Use(g.authenticated()...)
	{
		consumer.POST("/orders/:orderId/accept", g.can(permission.ObjectOrder, permission.ActionWrite), orders.AcceptOrder)
		consumer.POST("/orders/:orderId/decline", g.can(permission.ObjectOrder, permission.ActionWrite), orders.DeclineOrder)
		consumer.POST("/ratings/submit", g.can(permission.ObjectRating, permission.ActionWrite), ratings.SubmitRating)
	}

	partners := engine.Group("/partners")
	partners.Use(g.authenticated()...)
	{
		partners.GET("/:partnerId/ratings", g.can(permission.ObjectRating, permission.ActionRead), ratings.ListRatings)
	}
}
