package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/projecthub/backend/internal/middleware"
	"github.com/projecthub/backend/internal/services"
	"github.com/projecthub/backend/pkg/response"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List returns the caller's notifications, newest first
// GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)

	notifications, err := h.notificationService.List(userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	unread, err := h.notificationService.UnreadCount(userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"count":         len(notifications),
		"unread":        unread,
		"notifications": notifications,
	})
}

// MarkRead marks one notification read (idempotent)
// PATCH /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.BadRequest(c, "invalid notification id")
		return
	}

	notification, err := h.notificationService.MarkRead(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, notification)
}

// MarkAllRead marks every unread notification of the caller
// PUT /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notificationService.MarkAllRead(middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "all notifications marked read"})
}

// Delete removes a notification (recipient only)
// DELETE /api/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.BadRequest(c, "invalid notification id")
		return
	}

	if err := h.notificationService.Delete(middleware.GetUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "notification deleted"})
}
