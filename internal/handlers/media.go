package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"site-crm-backend/internal/models"
	"site-crm-backend/internal/services"
)

type MediaHandler struct {
	media *services.MediaService
}

func NewMediaHandler(media *services.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// GetMedia godoc
// @Summary     Personalization files
// @Description Returns signed, time-limited links to the logo, testimonial images and media of a personalization. A file that cannot be signed carries an error instead of a URL.
// @Tags        personalizations
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Personalization ID"
// @Success     200 {object} services.MediaLinks
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /personalizations/{id}/media [get]
func (h *MediaHandler) GetMedia(c *gin.Context) {
	if h.media == nil {
		databaseUnavailable(c)
		return
	}

	id, ok := pathID(c, "personalization")
	if !ok {
		return
	}

	links, err := h.media.Links(c.Request.Context(), id)
	if err != nil {
		respondError(c, "failed to load files", err)
		return
	}
	c.JSON(http.StatusOK, links)
}

// ProbeMedia godoc
// @Summary     Check a stored file
// @Description Best-effort existence check of a stored object through its public URL.
// @Tags        personalizations
// @Security    Bearer
// @Param       path query string true "Object path inside the bucket"
// @Success     200
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /media/probe [get]
func (h *MediaHandler) ProbeMedia(c *gin.Context) {
	if h.media == nil {
		databaseUnavailable(c)
		return
	}

	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "path is required"})
		return
	}
	if !h.media.Exists(c.Request.Context(), path) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "file not found"})
		return
	}
	c.Status(http.StatusOK)
}
