package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"site-crm-backend/internal/board"
	"site-crm-backend/internal/models"
	"site-crm-backend/internal/projects"
)

const dateLayout = "2006-01-02"

type ProjectsHandler struct {
	service *projects.Service
	board   *board.Board
}

func NewProjectsHandler(service *projects.Service, board *board.Board) *ProjectsHandler {
	return &ProjectsHandler{
		service: service,
		board:   board,
	}
}

// parseFilter reads the list filters from the query string. Dates are
// YYYY-MM-DD or RFC 3339; "to" covers the whole day.
func parseFilter(c *gin.Context) (models.ProjectFilter, error) {
	f := models.ProjectFilter{
		Status:      strings.TrimSpace(c.Query("status")),
		Responsible: strings.TrimSpace(c.Query("responsible")),
		Domain:      strings.TrimSpace(c.Query("domain")),
		Search:      strings.TrimSpace(c.Query("search")),
	}

	if v := c.Query("from"); v != "" {
		from, _, err := parseDate(v)
		if err != nil {
			return f, models.NewValidationError("from", err.Error())
		}
		f.From = &from
	}
	if v := c.Query("to"); v != "" {
		to, dayOnly, err := parseDate(v)
		if err != nil {
			return f, models.NewValidationError("to", err.Error())
		}
		if dayOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = &to
	}
	return f, nil
}

func parseDate(v string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid date %q: use YYYY-MM-DD", v)
	}
	return t, false, nil
}

// ListProjects godoc
// @Summary     List projects
// @Description Lists projects newest first. status, responsible, domain and the date range are applied by the database; search then matches client name, template or responsible (case-insensitive). A failed query returns an error, never a stale list.
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       status query string false "Exact status"
// @Param       responsible query string false "Responsible name (substring)"
// @Param       domain query string false "Domain (substring)"
// @Param       from query string false "Created on or after (YYYY-MM-DD)"
// @Param       to query string false "Created on or before (YYYY-MM-DD)"
// @Param       search query string false "Free-text search"
// @Success     200 {object} models.ProjectListResponse
// @Failure     400 {object} models.ValidationErrorResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /projects [get]
func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	if h.service == nil {
		databaseUnavailable(c)
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		respondError(c, "invalid filter", err)
		return
	}

	rows, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "failed to list projects", err)
		return
	}

	c.JSON(http.StatusOK, models.ProjectListResponse{
		Projects: rows,
		Total:    len(rows),
		Filters:  filter,
	})
}

// GetProject godoc
// @Summary     Get project
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Project ID"
// @Success     200 {object} models.Project
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /projects/{id} [get]
func (h *ProjectsHandler) GetProject(c *gin.Context) {
	if h.service == nil {
		databaseUnavailable(c)
		return
	}

	id, ok := pathID(c, "project")
	if !ok {
		return
	}

	project, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "failed to get project", err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// CreateProject godoc
// @Summary     Create project
// @Description Creates a project. Status defaults to Recebido.
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.ProjectRequest true "Project"
// @Success     201 {object} models.Project
// @Failure     400 {object} models.ValidationErrorResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /projects [post]
func (h *ProjectsHandler) CreateProject(c *gin.Context) {
	if h.service == nil {
		databaseUnavailable(c)
		return
	}

	var req models.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	project, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, "failed to create project", err)
		return
	}
	if h.board != nil {
		h.board.Track(*project)
	}
	c.JSON(http.StatusCreated, project)
}

// UpdateProject godoc
// @Summary     Update project
// @Description Updates the editable fields. Status changes go through PATCH /projects/{id}/status.
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Project ID"
// @Param       request body models.ProjectRequest true "Project"
// @Success     200 {object} models.Project
// @Failure     400 {object} models.ValidationErrorResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /projects/{id} [put]
func (h *ProjectsHandler) UpdateProject(c *gin.Context) {
	if h.service == nil {
		databaseUnavailable(c)
		return
	}

	var req models.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	id, ok := pathID(c, "project")
	if !ok {
		return
	}

	project, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, "failed to update project", err)
		return
	}
	if h.board != nil {
		h.board.Track(*project)
	}
	c.JSON(http.StatusOK, project)
}

// DeleteProject godoc
// @Summary     Delete project
// @Description Deletes the project's customizations and then the project.
// @Tags        projects
// @Security    Bearer
// @Param       id path string true "Project ID"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /projects/{id} [delete]
func (h *ProjectsHandler) DeleteProject(c *gin.Context) {
	if h.service == nil {
		databaseUnavailable(c)
		return
	}

	id, ok := pathID(c, "project")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, "failed to delete project", err)
		return
	}
	if h.board != nil {
		h.board.Forget(id)
	}
	c.Status(http.StatusNoContent)
}

// UpdateStatus godoc
// @Summary     Change project status
// @Description Moves a project to another pipeline status, like the quick-action buttons on a card. Moving to the current status is a no-op.
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Project ID"
// @Param       request body models.StatusTransitionRequest true "Target status"
// @Success     200 {object} models.ProjectStatusResponse
// @Failure     400 {object} models.ValidationErrorResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /projects/{id}/status [patch]
func (h *ProjectsHandler) UpdateStatus(c *gin.Context) {
	if h.board == nil {
		databaseUnavailable(c)
		return
	}

	var req models.StatusTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	id, ok := pathID(c, "project")
	if !ok {
		return
	}

	result, err := h.board.Move(c.Request.Context(), id, req.Status, board.SourceButton)
	if err != nil {
		respondError(c, "failed to update status", err)
		return
	}
	c.JSON(http.StatusOK, models.ProjectStatusResponse{
		Project: result.Project,
		Changed: result.Changed,
		Message: result.Message,
	})
}

// GetStats godoc
// @Summary     Project statistics
// @Description Counts projects per pipeline status with their share of the total.
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Success     200 {object} projects.Stats
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /stats/projects [get]
func (h *ProjectsHandler) GetStats(c *gin.Context) {
	if h.service == nil {
		databaseUnavailable(c)
		return
	}

	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, "failed to load stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
