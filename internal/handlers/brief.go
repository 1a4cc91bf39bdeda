package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"site-crm-backend/internal/brief"
	"site-crm-backend/internal/models"
)

type BriefHandler struct {
	generator *brief.Generator
}

func NewBriefHandler(generator *brief.Generator) *BriefHandler {
	return &BriefHandler{generator: generator}
}

// GetSiteCommand godoc
// @Summary     Site production brief
// @Description Renders the plain-text brief used to build the client's site from the project and its personalization.
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Project ID"
// @Success     200 {object} models.SiteCommandResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /projects/{id}/site-command [get]
func (h *BriefHandler) GetSiteCommand(c *gin.Context) {
	if h.generator == nil {
		databaseUnavailable(c)
		return
	}

	id, ok := pathID(c, "project")
	if !ok {
		return
	}
	command, err := h.generator.SiteCommand(c.Request.Context(), id)
	if err != nil {
		respondError(c, "failed to generate site command", err)
		return
	}
	c.JSON(http.StatusOK, models.SiteCommandResponse{ProjectID: id, Command: command})
}
