package marketplace

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fachwerk-hq/fachwerk/internal/application/marketplace/usecases"
	"github.com/fachwerk-hq/fachwerk/internal/interfaces/http/middleware"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
	"github.com/fachwerk-hq/fachwerk/internal/shared/utils"
)

// AdminHandler holds the operator-only operations on requests.
type AdminHandler struct {
	resolveProblemUC      usecases.ResolveProblemExecutor
	recordInvoiceStatusUC usecases.RecordInvoiceStatusExecutor
	logger                logger.Interface
}

func NewAdminHandler(resolveProblemUC usecases.ResolveProblemExecutor, recordInvoiceStatusUC usecases.RecordInvoiceStatusExecutor, logger logger.Interface) *AdminHandler {
	return &AdminHandler{
		resolveProblemUC:      resolveProblemUC,
		recordInvoiceStatusUC: recordInvoiceStatusUC,
		logger:                logger,
	}
}

// ResolveProblem handles POST /admin/requests/:id/resolve-problem
// @Summary Resolve a reported problem
// @Tags Admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Request ID"
// @Success 200 {object} utils.APIResponse{data=dto.RequestDTO}
// @Failure 401 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /admin/requests/{id}/resolve-problem [post]
func (h *AdminHandler) ResolveProblem(c *gin.Context) {
	requestID, err := requiredParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.resolveProblemUC.Execute(c.Request.Context(), usecases.ResolveProblemCommand{
		Caller:    middleware.GetCaller(c),
		RequestID: requestID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Problem resolved", result.Request)
}

// RecordInvoiceEvent handles POST /admin/requests/:id/invoice-events
// @Summary Record an invoice status change
// @Tags Admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Request ID"
// @Param request body InvoiceEventRequest true "Invoice event"
// @Success 200 {object} utils.APIResponse{data=dto.MessageDTO}
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /admin/requests/{id}/invoice-events [post]
func (h *AdminHandler) RecordInvoiceEvent(c *gin.Context) {
	requestID, err := requiredParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req InvoiceEventRequest
	if err := bindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.recordInvoiceStatusUC.Execute(c.Request.Context(), usecases.RecordInvoiceStatusCommand{
		Caller:    middleware.GetCaller(c),
		RequestID: requestID,
		InvoiceID: req.InvoiceID,
		Status:    req.Status,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result.Message, "Invoice status recorded")
}
