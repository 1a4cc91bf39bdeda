package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"site-crm-backend/internal/middleware"
	"site-crm-backend/internal/models"
	"site-crm-backend/internal/supabase"
)

// Authenticator signs a dashboard user in against Supabase Auth.
type Authenticator interface {
	SignInWithPassword(email, password string) (*supabase.Session, error)
}

type AuthHandler struct {
	auth Authenticator
}

func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login godoc
// @Summary     Sign in
// @Description Signs in with email and password. The response names where to go next: the originally requested path, or the dashboard root.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.LoginRequest true "Credentials"
// @Success     200 {object} models.LoginResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	if h.auth == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "auth not available"})
		return
	}

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	session, err := h.auth.SignInWithPassword(strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid credentials", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    session.ExpiresIn,
		UserID:       session.UserID,
		Email:        session.Email,
		Redirect:     redirectTarget(req.RedirectTo),
	})
}

// Session godoc
// @Summary     Current session
// @Description Returns the user id of the bearer token. Used by the dashboard to guard its routes.
// @Tags        auth
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.SessionResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Router      /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, models.SessionResponse{UserID: c.GetString(middleware.UserIDKey)})
}

// redirectTarget only follows local paths.
func redirectTarget(path string) string {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return "/"
	}
	return path
}
