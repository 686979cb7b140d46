package marketplace

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fachwerk-hq/fachwerk/internal/application/marketplace/usecases"
	"github.com/fachwerk-hq/fachwerk/internal/interfaces/http/middleware"
	"github.com/fachwerk-hq/fachwerk/internal/shared/constants"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
	"github.com/fachwerk-hq/fachwerk/internal/shared/utils"
)

// ChatHandler serves the conversation of a request: its ledger, chat text,
// appointments and orders. A consumer picks among several conversations with
// ?partner_id=.
type ChatHandler struct {
	listMessagesUC       usecases.ListMessagesExecutor
	sendMessageUC        usecases.SendMessageExecutor
	proposeAppointmentUC usecases.ProposeAppointmentExecutor
	respondAppointmentUC usecases.RespondAppointmentExecutor
	issueOrderUC         usecases.IssueOrderExecutor
	logger               logger.Interface
}

func NewChatHandler(
	listMessagesUC usecases.ListMessagesExecutor,
	sendMessageUC usecases.SendMessageExecutor,
	proposeAppointmentUC usecases.ProposeAppointmentExecutor,
	respondAppointmentUC usecases.RespondAppointmentExecutor,
	issueOrderUC usecases.IssueOrderExecutor,
	logger logger.Interface,
) *ChatHandler {
	return &ChatHandler{
		listMessagesUC:       listMessagesUC,
		sendMessageUC:        sendMessageUC,
		proposeAppointmentUC: proposeAppointmentUC,
		respondAppointmentUC: respondAppointmentUC,
		issueOrderUC:         issueOrderUC,
		logger:               logger,
	}
}

// ListMessages handles GET /chat/:requestId/messages?after=&limit=
// @Summary List conversation messages
// @Tags Chat
// @Accept json
// @Produce json
// @Security Bearer
// @Param requestId path string true "Request ID"
// @Param after query string false "Cursor"
// @Param limit query int false "Page size"
// @Success 200 {object} utils.APIResponse{data=utils.CursorResponse}
// @Failure 401 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /chat/{requestId}/messages [get]
func (h *ChatHandler) ListMessages(c *gin.Context) {
	requestID, err := requiredParam(c, "requestId")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.listMessagesUC.Execute(c.Request.Context(), usecases.ListMessagesQuery{
		Caller:    middleware.GetCaller(c),
		RequestID: requestID,
		PartnerID: c.Query("partner_id"),
		After:     c.Query("after"),
		Limit:     utils.ParseLimit(c, constants.DefaultMessageLimit, constants.MaxMessageLimit),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CursorSuccessResponse(c, result.Messages, result.Next)
}

// SendMessage handles POST /chat/:requestId/messages
// @Summary Send a chat message
// @Tags Chat
// @Accept json
// @Produce json
// @Security Bearer
// @Param requestId path string true "Request ID"
// @Param request body SendMessageRequest true "Message"
// @Success 201 {object} utils.APIResponse{data=dto.MessageDTO}
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /chat/{requestId}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	requestID, err := requiredParam(c, "requestId")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req SendMessageRequest
	if err := bindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.sendMessageUC.Execute(c.Request.Context(), usecases.SendMessageCommand{
		Caller:    middleware.GetCaller(c),
		RequestID: requestID,
		PartnerID: c.Query("partner_id"),
		Text:      req.Text,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result.Message, "Message sent")
}

// ProposeAppointment handles POST /chat/:requestId/appointment/create
// @Summary Propose an appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Security Bearer
// @Param requestId path string true "Request ID"
// @Param request body ProposeAppointmentRequest true "Appointment"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /chat/{requestId}/appointment/create [post]
func (h *ChatHandler) ProposeAppointment(c *gin.Context) {
	requestID, err := requiredParam(c, "requestId")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ProposeAppointmentRequest
	if err := bindJSON(c, &req); err != nil {
		h.logger.Warnw("invalid request body for propose appointment", "error", err, "request_id", requestID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.proposeAppointmentUC.Execute(c.Request.Context(), req.ToCommand(middleware.GetCaller(c), requestID))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"appointment_id": result.Appointment.ID,
		"appointment":    result.Appointment,
		"request":        result.Request,
	}, "Appointment proposed")
}

// ConfirmAppointment handles POST /konsument/chat/:requestId/appointment/:appointmentId/confirm
// @Summary Confirm an appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Security Bearer
// @Param requestId path string true "Request ID"
// @Param appointmentId path string true "Appointment ID"
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /konsument/chat/{requestId}/appointment/{appointmentId}/confirm [post]
func (h *ChatHandler) ConfirmAppointment(c *gin.Context) {
	h.respondAppointment(c, usecases.AppointmentConfirm)
}

// DeclineAppointment handles POST /konsument/chat/:requestId/appointment/:appointmentId/decline
// @Summary Decline an appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Security Bearer
// @Param requestId path string true "Request ID"
// @Param appointmentId path string true "Appointment ID"
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /konsument/chat/{requestId}/appointment/{appointmentId}/decline [post]
func (h *ChatHandler) DeclineAppointment(c *gin.Context) {
	h.respondAppointment(c, usecases.AppointmentDecline)
}

func (h *ChatHandler) respondAppointment(c *gin.Context, response usecases.AppointmentResponse) {
	requestID, err := requiredParam(c, "requestId")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	appointmentID, err := requiredParam(c, "appointmentId")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.respondAppointmentUC.Execute(c.Request.Context(), usecases.RespondAppointmentCommand{
		Caller:        middleware.GetCaller(c),
		RequestID:     requestID,
		AppointmentID: appointmentID,
		Response:      response,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"ok":          true,
		"appointment": result.Appointment,
		"request":     result.Request,
	})
}

// IssueOrder handles POST /chat/:requestId/orders
// @Summary Issue an order
// @Tags Orders
// @Accept json
// @Produce json
// @Security Bearer
// @Param requestId path string true "Request ID"
// @Param request body IssueOrderRequest true "Order"
// @Success 201 {object} utils.APIResponse{data=dto.OrderDTO}
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /chat/{requestId}/orders [post]
func (h *ChatHandler) IssueOrder(c *gin.Context) {
	requestID, err := requiredParam(c, "requestId")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req IssueOrderRequest
	if err := bindJSON(c, &req); err != nil {
		h.logger.Warnw("invalid request body for issue order", "error", err, "request_id", requestID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.issueOrderUC.Execute(c.Request.Context(), req.ToCommand(middleware.GetCaller(c), requestID))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"order":   result.Order,
		"request": result.Request,
	}, "Order issued")
}
