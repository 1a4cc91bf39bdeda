package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"site-crm-backend/internal/models"
	"site-crm-backend/internal/notifications"
)

type NotificationsHandler struct {
	engine *notifications.Engine
}

func NewNotificationsHandler(engine *notifications.Engine) *NotificationsHandler {
	return &NotificationsHandler{engine: engine}
}

// ListNotifications godoc
// @Summary     List notifications
// @Description Returns active notifications, newest first, with the unread count.
// @Tags        notifications
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.NotificationListResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Router      /notifications [get]
func (h *NotificationsHandler) ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, models.NotificationListResponse{
		Notifications: h.engine.List(),
		Unread:        h.engine.UnreadCount(),
	})
}

// MarkAsRead godoc
// @Summary     Mark a notification as read
// @Tags        notifications
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Notification ID"
// @Success     200 {object} models.NotificationListResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /notifications/{id}/read [post]
func (h *NotificationsHandler) MarkAsRead(c *gin.Context) {
	if err := h.engine.MarkAsRead(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "failed to update notification", err)
		return
	}
	h.ListNotifications(c)
}

// Dismiss godoc
// @Summary     Dismiss a notification
// @Description Removes the notification. A dismissed notification never comes back, even if the same change is reported again.
// @Tags        notifications
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Notification ID"
// @Success     200 {object} models.NotificationListResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /notifications/{id} [delete]
func (h *NotificationsHandler) Dismiss(c *gin.Context) {
	if err := h.engine.Dismiss(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "failed to dismiss notification", err)
		return
	}
	h.ListNotifications(c)
}

// ClearAll godoc
// @Summary     Clear notifications
// @Description Dismisses every active notification.
// @Tags        notifications
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.NotificationListResponse
// @Failure     401 {object} models.AuthErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /notifications [delete]
func (h *NotificationsHandler) ClearAll(c *gin.Context) {
	if err := h.engine.ClearAll(c.Request.Context()); err != nil {
		respondError(c, "failed to clear notifications", err)
		return
	}
	h.ListNotifications(c)
}
