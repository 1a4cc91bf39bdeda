package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"site-crm-backend/internal/customizations"
	"site-crm-backend/internal/models"
)

type CustomizationsHandler struct {
	tracker *customizations.Tracker
}

func NewCustomizationsHandler(tracker *customizations.Tracker) *CustomizationsHandler {
	return &CustomizationsHandler{tracker: tracker}
}

// ListCustomizations godoc
// @Summary     List customizations
// @Description Lists the customization requests of a project, newest first.
// @Tags        customizations
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Project ID"
// @Success     200 {object} models.CustomizationListResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /projects/{id}/customizations [get]
func (h *CustomizationsHandler) ListCustomizations(c *gin.Context) {
	if h.tracker == nil {
		databaseUnavailable(c)
		return
	}

	id, ok := pathID(c, "project")
	if !ok {
		return
	}

	items, err := h.tracker.List(c.Request.Context(), id)
	if err != nil {
		respondError(c, "failed to list customizations", err)
		return
	}
	if items == nil {
		items = []models.ProjectCustomization{}
	}
	c.JSON(http.StatusOK, models.CustomizationListResponse{Customizations: items})
}

// RequestCustomization godoc
// @Summary     Request a customization
// @Description Records a customization request and moves the project to Em Customização. If the project update fails the request is still kept.
// @Tags        customizations
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Project ID"
// @Param       request body models.CreateCustomizationRequest true "Customization"
// @Success     201 {object} models.CustomizationRequestResponse
// @Failure     400 {object} models.ValidationErrorResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /projects/{id}/customizations [post]
func (h *CustomizationsHandler) RequestCustomization(c *gin.Context) {
	if h.tracker == nil {
		databaseUnavailable(c)
		return
	}

	var req models.CreateCustomizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	id, ok := pathID(c, "project")
	if !ok {
		return
	}

	result, err := h.tracker.Request(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, "failed to create customization", err)
		return
	}
	c.JSON(http.StatusCreated, models.CustomizationRequestResponse{
		Customization: *result.Customization,
		ProjectStatus: result.ProjectStatus,
	})
}

// UpdateCustomizationStatus godoc
// @Summary     Change customization status
// @Description Any transition is allowed. Concluído records the completion time.
// @Tags        customizations
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Customization ID"
// @Param       request body models.CustomizationStatusRequest true "Status"
// @Success     200 {object} models.ProjectCustomization
// @Failure     400 {object} models.ValidationErrorResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /customizations/{id} [patch]
func (h *CustomizationsHandler) UpdateCustomizationStatus(c *gin.Context) {
	if h.tracker == nil {
		databaseUnavailable(c)
		return
	}

	var req models.CustomizationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	id, ok := pathID(c, "customization")
	if !ok {
		return
	}

	updated, err := h.tracker.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, "failed to update customization", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteCustomization godoc
// @Summary     Delete customization
// @Tags        customizations
// @Security    Bearer
// @Param       id path string true "Customization ID"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /customizations/{id} [delete]
func (h *CustomizationsHandler) DeleteCustomization(c *gin.Context) {
	if h.tracker == nil {
		databaseUnavailable(c)
		return
	}

	id, ok := pathID(c, "customization")
	if !ok {
		return
	}

	if err := h.tracker.Delete(c.Request.Context(), id); err != nil {
		respondError(c, "failed to delete customization", err)
		return
	}
	c.Status(http.StatusNoContent)
}
