package marketplace

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fachwerk-hq/fachwerk/internal/application/marketplace/usecases"
	"github.com/fachwerk-hq/fachwerk/internal/interfaces/http/middleware"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
	"github.com/fachwerk-hq/fachwerk/internal/shared/utils"
)

type OrderHandler struct {
	getOrderUC    usecases.GetOrderExecutor
	decideOrderUC usecases.DecideOrderExecutor
	logger        logger.Interface
}

func NewOrderHandler(getOrderUC usecases.GetOrderExecutor, decideOrderUC usecases.DecideOrderExecutor, logger logger.Interface) *OrderHandler {
	return &OrderHandler{
		getOrderUC:    getOrderUC,
		decideOrderUC: decideOrderUC,
		logger:        logger,
	}
}

// GetOrder handles GET /orders/:orderId
// @Summary Get order
// @Tags Orders
// @Accept json
// @Produce json
// @Security Bearer
// @Param orderId path string true "Order ID"
// @Success 200 {object} utils.APIResponse{data=dto.OrderDTO}
// @Failure 401 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /orders/{orderId} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := requiredParam(c, "orderId")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getOrderUC.Execute(c.Request.Context(), usecases.GetOrderQuery{
		Caller:  middleware.GetCaller(c),
		OrderID: orderID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result.Order)
}

// AcceptOrder handles POST /konsument/orders/:orderId/accept
// @Summary Accept an order
// @Tags Orders
// @Accept json
// @Produce json
// @Security Bearer
// @Param orderId path string true "Order ID"
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /konsument/orders/{orderId}/accept [post]
func (h *OrderHandler) AcceptOrder(c *gin.Context) {
	h.decide(c, usecases.OrderActionAccept)
}

// DeclineOrder handles POST /konsument/orders/:orderId/decline. Repeating it
// answers with the same body.
// @Summary Decline an order
// @Tags Orders
// @Accept json
// @Produce json
// @Security Bearer
// @Param orderId path string true "Order ID"
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /konsument/orders/{orderId}/decline [post]
func (h *OrderHandler) DeclineOrder(c *gin.Context) {
	h.decide(c, usecases.OrderActionDecline)
}

// CancelOrder handles POST /orders/:orderId/cancel
// @Summary Cancel an order
// @Tags Orders
// @Accept json
// @Produce json
// @Security Bearer
// @Param orderId path string true "Order ID"
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /orders/{orderId}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	h.decide(c, usecases.OrderActionCancel)
}

func (h *OrderHandler) decide(c *gin.Context, action usecases.OrderAction) {
	orderID, err := requiredParam(c, "orderId")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.decideOrderUC.Execute(c.Request.Context(), usecases.DecideOrderCommand{
		Caller:  middleware.GetCaller(c),
		OrderID: orderID,
		Action:  action,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"status":  result.Order.Status,
		"order":   result.Order,
		"request": result.Request,
	})
}
