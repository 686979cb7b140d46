package marketplace

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fachwerk-hq/fachwerk/internal/application/marketplace/usecases"
	"github.com/fachwerk-hq/fachwerk/internal/interfaces/http/middleware"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
	"github.com/fachwerk-hq/fachwerk/internal/shared/utils"
)

// RequestHandler serves service requests and the applications made on them.
type RequestHandler struct {
	createRequestUC     usecases.CreateRequestExecutor
	getRequestUC        usecases.GetRequestExecutor
	listRequestsUC      usecases.ListRequestsExecutor
	deleteRequestUC     usecases.DeleteRequestExecutor
	reportProblemUC     usecases.ReportProblemExecutor
	submitApplicationUC usecases.SubmitApplicationExecutor
	decideApplicationUC usecases.DecideApplicationExecutor
	listApplicationsUC  usecases.ListApplicationsExecutor
	logger              logger.Interface
}

func NewRequestHandler(
	createRequestUC usecases.CreateRequestExecutor,
	getRequestUC usecases.GetRequestExecutor,
	listRequestsUC usecases.ListRequestsExecutor,
	deleteRequestUC usecases.DeleteRequestExecutor,
	reportProblemUC usecases.ReportProblemExecutor,
	submitApplicationUC usecases.SubmitApplicationExecutor,
	decideApplicationUC usecases.DecideApplicationExecutor,
	listApplicationsUC usecases.ListApplicationsExecutor,
	logger logger.Interface,
) *RequestHandler {
	return &RequestHandler{
		createRequestUC:     createRequestUC,
		getRequestUC:        getRequestUC,
		listRequestsUC:      listRequestsUC,
		deleteRequestUC:     deleteRequestUC,
		reportProblemUC:     reportProblemUC,
		submitApplicationUC: submitApplicationUC,
		decideApplicationUC: decideApplicationUC,
		listApplicationsUC:  listApplicationsUC,
		logger:              logger,
	}
}

// CreateRequest handles POST /requests
// @Summary Create service request
// @Tags Requests
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body CreateRequestRequest true "Request details"
// @Success 201 {object} utils.APIResponse{data=dto.RequestDTO}
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Router /requests [post]
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req CreateRequestRequest
	if err := bindJSON(c, &req); err != nil {
		h.logger.Warnw("invalid request body for create request", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.createRequestUC.Execute(c.Request.Context(), req.ToCommand(middleware.GetCaller(c)))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result.Request, "Request created successfully")
}

// ListRequests handles GET /requests
// @Summary List service requests
// @Tags Requests
// @Accept json
// @Produce json
// @Security Bearer
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param status query string false "Status filter"
// @Success 200 {object} utils.APIResponse{data=utils.ListResponse}
// @Failure 401 {object} utils.APIResponse
// @Router /requests [get]
func (h *RequestHandler) ListRequests(c *gin.Context) {
	req := parseListRequestsRequest(c)

	result, err := h.listRequestsUC.Execute(c.Request.Context(), usecases.ListRequestsQuery{
		Caller:   middleware.GetCaller(c),
		Statuses: req.Statuses,
		Mine:     req.Mine,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Requests, result.Total, result.Page, result.PageSize)
}

// GetRequest handles GET /requests/:id
// @Summary Get service request
// @Tags Requests
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Request ID"
// @Success 200 {object} utils.APIResponse{data=dto.RequestDTO}
// @Failure 401 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /requests/{id} [get]
func (h *RequestHandler) GetRequest(c *gin.Context) {
	requestID, err := requiredParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getRequestUC.Execute(c.Request.Context(), usecases.GetRequestQuery{
		Caller:    middleware.GetCaller(c),
		RequestID: requestID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result.Request)
}

// DeleteRequest handles DELETE /requests/:id. The request is kept with the
// deleted status.
// @Summary Delete service request
// @Tags Requests
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Request ID"
// @Success 200 {object} utils.APIResponse{data=dto.RequestDTO}
// @Failure 401 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /requests/{id} [delete]
func (h *RequestHandler) DeleteRequest(c *gin.Context) {
	requestID, err := requiredParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.deleteRequestUC.Execute(c.Request.Context(), usecases.DeleteRequestCommand{
		Caller:    middleware.GetCaller(c),
		RequestID: requestID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Request deleted", result.Request)
}

// ReportProblem handles POST /requests/:id/problem
// @Summary Report a problem
// @Tags Requests
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Request ID"
// @Param request body ReportProblemRequest true "Problem note"
// @Success 200 {object} utils.APIResponse{data=dto.RequestDTO}
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /requests/{id}/problem [post]
func (h *RequestHandler) ReportProblem(c *gin.Context) {
	requestID, err := requiredParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ReportProblemRequest
	if err := bindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.reportProblemUC.Execute(c.Request.Context(), usecases.ReportProblemCommand{
		Caller:    middleware.GetCaller(c),
		RequestID: requestID,
		Note:      req.Note,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Problem reported", result.Request)
}

// ListApplications handles GET /requests/:id/applications
// @Summary List applications of a request
// @Tags Applications
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Request ID"
// @Success 200 {object} utils.APIResponse{data=[]dto.ApplicationDTO}
// @Failure 401 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /requests/{id}/applications [get]
func (h *RequestHandler) ListApplications(c *gin.Context) {
	requestID, err := requiredParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.listApplicationsUC.Execute(c.Request.Context(), usecases.ListApplicationsQuery{
		Caller:    middleware.GetCaller(c),
		RequestID: requestID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result.Applications)
}

// SubmitApplication handles POST /applications
// @Summary Apply to a service request
// @Tags Applications
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body SubmitApplicationRequest true "Application"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /applications [post]
func (h *RequestHandler) SubmitApplication(c *gin.Context) {
	var req SubmitApplicationRequest
	if err := bindJSON(c, &req); err != nil {
		h.logger.Warnw("invalid request body for submit application", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.submitApplicationUC.Execute(c.Request.Context(), usecases.SubmitApplicationCommand{
		Caller:    middleware.GetCaller(c),
		RequestID: req.RequestID,
		PartnerID: req.PartnerID,
		Message:   req.MessageText,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"id":              result.Application.ID,
		"application":     result.Application,
		"conversation_id": result.ConversationID,
	}, "Application submitted")
}

// DecideApplication handles POST /applications/:id/decision
// @Summary Accept or decline an application
// @Tags Applications
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Application ID"
// @Param request body DecideApplicationRequest true "Decision"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /applications/{id}/decision [post]
func (h *RequestHandler) DecideApplication(c *gin.Context) {
	applicationID, err := requiredParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req DecideApplicationRequest
	if err := bindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.decideApplicationUC.Execute(c.Request.Context(), usecases.DecideApplicationCommand{
		Caller:        middleware.GetCaller(c),
		RequestID:     req.RequestID,
		ApplicationID: applicationID,
		Decision:      usecases.ApplicationDecision(req.Action),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"application":       result.Application,
		"request":           result.Request,
		"conversation_id":   result.ConversationID,
		"declined_siblings": result.DeclinedSiblings,
	})
}
