package socket

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"site-crm-backend/internal/models"
)

// TokenParser returns the user id carried by a bearer token.
type TokenParser func(token string) (string, error)

type Handler struct {
	hub      *Hub
	parse    TokenParser
	upgrader websocket.Upgrader
}

// NewHandler accepts connections from allowedOrigins; "*" allows any.
func NewHandler(hub *Hub, parse TokenParser, allowedOrigins []string) *Handler {
	return &Handler{
		hub:   hub,
		parse: parse,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(r.Header.Get("Origin"), allowedOrigins)
			},
		},
	}
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

// Serve godoc
// @Summary     Notification stream
// @Description Upgrades to a WebSocket that pushes new notifications. Browsers pass the access token in the query string.
// @Tags        notifications
// @Param       token query string false "Access token (falls back to the Authorization header)"
// @Success     101
// @Failure     401 {object} models.ErrorResponse
// @Router      /ws [get]
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "no token provided"})
		return
	}

	userID, err := h.parse(token)
	if err != nil {
		log.Printf("[WebSocket] Rejected token: %v", err)
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WebSocket] Upgrade error: %v", err)
		return
	}

	client := NewClient(h.hub, userID, conn)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
