package marketplace

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fachwerk-hq/fachwerk/internal/interfaces/http/middleware"
	"github.com/fachwerk-hq/fachwerk/internal/shared/utils"
)

type callerResponse struct {
	UserID          string   `json:"user_id"`
	Kind            string   `json:"kind"`
	OwnedPartnerIDs []string `json:"owned_partner_ids"`
	IsAdmin         bool     `json:"is_admin"`
}

// Me handles GET /me
// @Summary Resolve the calling identity
// @Tags Identity
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.APIResponse{data=callerResponse}
// @Failure 401 {object} utils.APIResponse
// @Router /me [get]
func Me(c *gin.Context) {
	caller := middleware.GetCaller(c)
	owned := caller.OwnedPartnerIDs()
	if owned == nil {
		owned = []string{}
	}
	utils.SuccessResponse(c, http.StatusOK, "", callerResponse{
		UserID:          caller.UserID(),
		Kind:            string(caller.Kind()),
		OwnedPartnerIDs: owned,
		IsAdmin:         caller.IsAdmin(),
	})
}
