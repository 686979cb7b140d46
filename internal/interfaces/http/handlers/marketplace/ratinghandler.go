package marketplace

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fachwerk-hq/fachwerk/internal/application/marketplace/usecases"
	"github.com/fachwerk-hq/fachwerk/internal/interfaces/http/middleware"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
	"github.com/fachwerk-hq/fachwerk/internal/shared/utils"
)

type RatingHandler struct {
	submitRatingUC usecases.SubmitRatingExecutor
	listRatingsUC  usecases.ListRatingsExecutor
	logger         logger.Interface
}

func NewRatingHandler(submitRatingUC usecases.SubmitRatingExecutor, listRatingsUC usecases.ListRatingsExecutor, logger logger.Interface) *RatingHandler {
	return &RatingHandler{
		submitRatingUC: submitRatingUC,
		listRatingsUC:  listRatingsUC,
		logger:         logger,
	}
}

// SubmitRating handles POST /konsument/ratings/submit
// @Summary Rate a partner
// @Tags Ratings
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body SubmitRatingRequest true "Rating"
// @Success 201 {object} utils.APIResponse{data=dto.RatingDTO}
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /konsument/ratings/submit [post]
func (h *RatingHandler) SubmitRating(c *gin.Context) {
	var req SubmitRatingRequest
	if err := bindJSON(c, &req); err != nil {
		h.logger.Warnw("invalid request body for submit rating", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.submitRatingUC.Execute(c.Request.Context(), usecases.SubmitRatingCommand{
		Caller:      middleware.GetCaller(c),
		RequestID:   req.RequestID,
		Stars:       *req.Stars,
		Text:        req.Text,
		DisplayName: req.Name,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result.Rating, "Rating submitted")
}

type ratingsPage struct {
	utils.ListResponse
	Average float64 `json:"average"`
}

// ListRatings handles GET /partners/:partnerId/ratings
// @Summary List partner ratings
// @Tags Ratings
// @Accept json
// @Produce json
// @Security Bearer
// @Param partnerId path string true "Partner ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /partners/{partnerId}/ratings [get]
func (h *RatingHandler) ListRatings(c *gin.Context) {
	partnerID, err := requiredParam(c, "partnerId")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	p := utils.ParsePagination(c)

	result, err := h.listRatingsUC.Execute(c.Request.Context(), usecases.ListRatingsQuery{
		Caller:    middleware.GetCaller(c),
		PartnerID: partnerID,
		Page:      p.Page,
		PageSize:  p.PageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.APIResponse{
		Success: true,
		Data: ratingsPage{
			ListResponse: utils.NewListResponse(result.Ratings, result.Total, result.Page, result.PageSize),
			Average:      result.Average,
		},
	})
}
