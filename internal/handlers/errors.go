package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"site-crm-backend/internal/board"
	"site-crm-backend/internal/models"
	"site-crm-backend/internal/personalization"
	"site-crm-backend/internal/templates"
	"site-crm-backend/internal/upload"
)

// respondError maps service errors onto HTTP responses. action names what
// failed ("failed to list projects") for the 500 case.
func respondError(c *gin.Context, action string, err error) {
	var verr *models.ValidationError
	var uerr *upload.Error

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, models.ValidationErrorResponse{
			Error:  "validation failed",
			Fields: verr.Fields,
		})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not found", Message: err.Error()})
	case errors.Is(err, models.ErrStatusConflict),
		errors.Is(err, board.ErrTransitionInProgress),
		errors.Is(err, templates.ErrCustomURLTaken):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: action, Message: err.Error()})
	case errors.Is(err, personalization.ErrFilesConfirmationRequired):
		c.JSON(http.StatusUnprocessableEntity, models.FilesConfirmationResponse{
			Error:   "files confirmation required",
			Message: err.Error(),
			Field:   "confirmar_sem_arquivos",
		})
	case errors.As(err, &uerr):
		code := http.StatusBadGateway
		switch uerr.Kind {
		case upload.KindTooLarge:
			code = http.StatusRequestEntityTooLarge
		case upload.KindInvalidName:
			code = http.StatusBadRequest
		}
		c.JSON(code, models.ErrorResponse{Error: "upload failed", Message: uerr.Message})
	case errors.Is(err, models.ErrGatewayNotReady):
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: action, Message: err.Error()})
	}
}

func databaseUnavailable(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
}

// pathID reads the :id path parameter. Ids are UUIDs; anything else gets a
// 400 and ok is false.
func pathID(c *gin.Context, what string) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid " + what + " id", Message: err.Error()})
		return "", false
	}
	return id.String(), true
}
