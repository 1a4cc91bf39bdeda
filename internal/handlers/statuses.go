package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"site-crm-backend/internal/models"
	"site-crm-backend/internal/status"
)

// ListStatuses godoc
// @Summary     List project statuses
// @Description Returns the pipeline in order with each status color and icon, followed by the customization status.
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.StatusListResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Router      /statuses [get]
func ListStatuses(c *gin.Context) {
	entries := status.All()
	out := make([]models.StatusInfo, 0, len(entries)+1)
	for _, e := range entries {
		out = append(out, models.StatusInfo{Name: e.Value, Color: e.Color, Icon: e.Icon, Pipeline: true})
	}
	extra := status.Lookup(status.InCustomization)
	out = append(out, models.StatusInfo{Name: extra.Value, Color: extra.Color, Icon: extra.Icon})

	c.JSON(http.StatusOK, models.StatusListResponse{Statuses: out})
}
