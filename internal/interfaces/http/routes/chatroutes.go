package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/permission"
	marketplaceHandlers "github.com/fachwerk-hq/fachwerk/internal/interfaces/http/handlers/marketplace"
)

// ChatRouteConfig holds dependencies for conversation routes.
type ChatRouteConfig struct {
	ChatHandler   *marketplaceHandlers.ChatHandler
	StreamHandler *marketplaceHandlers.StreamHandler // may be nil
	Guards        *Guards
}

// SetupChatRoutes configures messages, the live stream, appointments and order issuing.
func SetupChatRoutes(engine *gin.Engine, cfg *ChatRouteConfig) {
	g := cfg.Guards
	h := cfg.ChatHandler

	chat := engine.Group("/chat/:requestId")
	chat.Use(g.authenticated()...)
	{
		chat.GET("/messages", g.can(permission.ObjectChat, permission.ActionRead), h.ListMessages)
		chat.POST("/messages", g.can(permission.ObjectChat, permission.ActionWrite), h.SendMessage)
		chat.POST("/appointment/create", g.can(permission.ObjectAppointment, permission.ActionWrite), h.ProposeAppointment)
		chat.POST("/orders", g.can(permission.ObjectOrder, permission.ActionWrite), h.IssueOrder)

		if cfg.StreamHandler != nil {
			chat.GET("/stream", g.can(permission.ObjectChat, permission.ActionRead), cfg.StreamHandler.Stream)
		}
	}

	consumerChat := engine.Group("/konsument/chat/:requestId/appointment/:appointmentId")
	consumerChat.Use(g.authenticated()...)
	{
		consumerChat.POST("/confirm", g.can(permission.ObjectAppointment, permission.ActionWrite), h.ConfirmAppointment)
		consumerChat.POST("/decline", g.can(permission.ObjectAppointment, permission.ActionWrite), h.DeclineAppointment)
	}
}
