package http

import (
	"github.com/fachwerk-hq/fachwerk/internal/interfaces/http/handlers"
	marketplaceHandlers "github.com/fachwerk-hq/fachwerk/internal/interfaces/http/handlers/marketplace"
)

// allHandlers holds all HTTP handler instances used by the router.
type allHandlers struct {
	healthHandler  *handlers.HealthHandler
	requestHandler *marketplaceHandlers.RequestHandler
	chatHandler    *marketplaceHandlers.ChatHandler
	orderHandler   *marketplaceHandlers.OrderHandler
	ratingHandler  *marketplaceHandlers.RatingHandler
	adminHandler   *marketplaceHandlers.AdminHandler

	// nil when Redis is disabled; the stream route is not mounted then.
	streamHandler *marketplaceHandlers.StreamHandler
}

// initHandlers builds the handlers from the use cases. subscriber may be nil.
func (c *Container) initHandlers(pinger handlers.Pinger, subscriber marketplaceHandlers.ConversationSubscriber) {
	ucs := c.ucs
	log := c.log

	hdlrs := &allHandlers{
		healthHandler: handlers.NewHealthHandler(pinger, log),
		requestHandler: marketplaceHandlers.NewRequestHandler(
			ucs.createRequestUC, ucs.getRequestUC, ucs.listRequestsUC, ucs.deleteRequestUC,
			ucs.reportProblemUC, ucs.submitApplicationUC, ucs.decideApplicationUC, ucs.listApplicationsUC,
			log,
		),
		chatHandler: marketplaceHandlers.NewChatHandler(
			ucs.listMessagesUC, ucs.sendMessageUC, ucs.proposeAppointmentUC,
			ucs.respondAppointmentUC, ucs.issueOrderUC, log,
		),
		orderHandler:  marketplaceHandlers.NewOrderHandler(ucs.getOrderUC, ucs.decideOrderUC, log),
		ratingHandler: marketplaceHandlers.NewRatingHandler(ucs.submitRatingUC, ucs.listRatingsUC, log),
		adminHandler:  marketplaceHandlers.NewAdminHandler(ucs.resolveProblemUC, ucs.recordInvoiceUC, log),
	}

	if subscriber != nil {
		hdlrs.streamHandler = marketplaceHandlers.NewStreamHandler(
			ucs.openConversationUC, ucs.listMessagesUC, subscriber,
			c.cfg.Server.AllowedOrigins, log,
		)
	}

	c.hdlrs = hdlrs
}
