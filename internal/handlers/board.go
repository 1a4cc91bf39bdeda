package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"site-crm-backend/internal/board"
	"site-crm-backend/internal/models"
)

type BoardHandler struct {
	board *board.Board
}

func NewBoardHandler(b *board.Board) *BoardHandler {
	return &BoardHandler{board: b}
}

// GetBoard godoc
// @Summary     Kanban board
// @Description Returns one column per pipeline status with its cards and the move shortcuts of each card. Filters are kept between calls; the list is only re-fetched when they change.
// @Tags        board
// @Produce     json
// @Security    Bearer
// @Param       status query string false "Exact status"
// @Param       responsible query string false "Responsible name (substring)"
// @Param       domain query string false "Domain (substring)"
// @Param       from query string false "Created on or after (YYYY-MM-DD)"
// @Param       to query string false "Created on or before (YYYY-MM-DD)"
// @Param       search query string false "Free-text search"
// @Success     200 {object} board.View
// @Failure     400 {object} models.ValidationErrorResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /board [get]
func (h *BoardHandler) GetBoard(c *gin.Context) {
	if h.board == nil {
		databaseUnavailable(c)
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		respondError(c, "invalid filter", err)
		return
	}

	if _, err := h.board.SetFilters(c.Request.Context(), filter); err != nil {
		respondError(c, "failed to load board", err)
		return
	}
	c.JSON(http.StatusOK, h.board.View())
}

// Move godoc
// @Summary     Move a card
// @Description Moves a project to another column, by drag-and-drop or a shortcut button. Dropping a card on its own column does nothing. Only one move runs at a time.
// @Tags        board
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.MoveRequest true "Move"
// @Success     200 {object} models.ProjectStatusResponse
// @Failure     400 {object} models.ValidationErrorResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /board/move [post]
func (h *BoardHandler) Move(c *gin.Context) {
	if h.board == nil {
		databaseUnavailable(c)
		return
	}

	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	result, err := h.board.Move(c.Request.Context(), req.ProjectID, req.Status, board.ParseSource(req.Source))
	if err != nil {
		respondError(c, "failed to move project", err)
		return
	}
	c.JSON(http.StatusOK, models.ProjectStatusResponse{
		Project: result.Project,
		Changed: result.Changed,
		Message: result.Message,
	})
}
