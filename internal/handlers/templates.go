package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"site-crm-backend/internal/models"
	"site-crm-backend/internal/templates"
)

type TemplatesHandler struct {
	registry *templates.Registry
	baseURL  string
}

// NewTemplatesHandler builds share links on baseURL, the public site that
// serves the personalization form.
func NewTemplatesHandler(registry *templates.Registry, baseURL string) *TemplatesHandler {
	return &TemplatesHandler{registry: registry, baseURL: baseURL}
}

// ListTemplates godoc
// @Summary     List templates
// @Tags        templates
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.TemplateListResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /templates [get]
func (h *TemplatesHandler) ListTemplates(c *gin.Context) {
	items, err := h.registry.List(c.Request.Context())
	if err != nil {
		respondError(c, "failed to list templates", err)
		return
	}
	if items == nil {
		items = []models.ModelTemplate{}
	}
	c.JSON(http.StatusOK, models.TemplateListResponse{Templates: items})
}

// GetTemplate godoc
// @Summary     Get template
// @Tags        templates
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Template ID"
// @Success     200 {object} models.ModelTemplate
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /templates/{id} [get]
func (h *TemplatesHandler) GetTemplate(c *gin.Context) {
	id, ok := pathID(c, "template")
	if !ok {
		return
	}

	t, err := h.registry.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "failed to get template", err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// CreateTemplate godoc
// @Summary     Create template
// @Description custom_url must be a lowercase slug not used by any other template.
// @Tags        templates
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.TemplateRequest true "Template"
// @Success     201 {object} models.ModelTemplate
// @Failure     400 {object} models.ValidationErrorResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /templates [post]
func (h *TemplatesHandler) CreateTemplate(c *gin.Context) {
	var req models.TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	t, err := h.registry.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, "failed to create template", err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// UpdateTemplate godoc
// @Summary     Update template
// @Tags        templates
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Template ID"
// @Param       request body models.TemplateRequest true "Template"
// @Success     200 {object} models.ModelTemplate
// @Failure     400 {object} models.ValidationErrorResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /templates/{id} [put]
func (h *TemplatesHandler) UpdateTemplate(c *gin.Context) {
	var req models.TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	id, ok := pathID(c, "template")
	if !ok {
		return
	}

	t, err := h.registry.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, "failed to update template", err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// DeleteTemplate godoc
// @Summary     Delete template
// @Tags        templates
// @Security    Bearer
// @Param       id path string true "Template ID"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /templates/{id} [delete]
func (h *TemplatesHandler) DeleteTemplate(c *gin.Context) {
	id, ok := pathID(c, "template")
	if !ok {
		return
	}

	if err := h.registry.Delete(c.Request.Context(), id); err != nil {
		respondError(c, "failed to delete template", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CheckCustomURL godoc
// @Summary     Check a custom URL
// @Description Reports whether a custom URL is a valid slug and free. exclude_id skips the template being edited.
// @Tags        templates
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CustomURLCheckRequest true "Custom URL"
// @Success     200 {object} models.CustomURLCheckResponse
// @Failure     400 {object} models.ValidationErrorResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /templates/validate-url [post]
func (h *TemplatesHandler) CheckCustomURL(c *gin.Context) {
	var req models.CustomURLCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	slug := templates.NormalizeSlug(req.CustomURL)
	err := h.registry.CheckCustomURL(c.Request.Context(), slug, req.ExcludeID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, models.CustomURLCheckResponse{CustomURL: slug, Available: true})
	case errors.Is(err, templates.ErrCustomURLTaken):
		c.JSON(http.StatusOK, models.CustomURLCheckResponse{CustomURL: slug, Message: err.Error()})
	default:
		respondError(c, "failed to check custom url", err)
	}
}

// GetShareURL godoc
// @Summary     Template share link
// @Description Returns the public form link, using the custom URL when set.
// @Tags        templates
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Template ID"
// @Success     200 {object} models.ShareURLResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /templates/{id}/share-url [get]
func (h *TemplatesHandler) GetShareURL(c *gin.Context) {
	id, ok := pathID(c, "template")
	if !ok {
		return
	}

	t, err := h.registry.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "failed to get template", err)
		return
	}
	c.JSON(http.StatusOK, models.ShareURLResponse{
		TemplateID: t.ID,
		URL:        templates.ShareURL(h.baseURL, *t),
	})
}
