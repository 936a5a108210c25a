// internal/handlers/notification/handler.go
package notification

import (
	"net/http"
	"strconv"

	"flota-service/internal/domain/notification"
	"flota-service/internal/middleware"
	"flota-service/internal/pkg/response"
	notifsvc "flota-service/internal/service/notification"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService *notifsvc.Service
}

func NewNotificationHandler(notificationService *notifsvc.Service) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List handles GET /notificaciones
func (h *NotificationHandler) List(c *gin.Context) {
	var filters notification.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid filters", err)
		return
	}

	p := middleware.MustGetPrincipal(c)
	resp, err := h.notificationService.List(c.Request.Context(), p.ID, &filters)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "notifications retrieved", resp)
}

// UnreadCount handles GET /notificaciones/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	count, err := h.notificationService.UnreadCount(c.Request.Context(), p.ID)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "unread count retrieved", gin.H{"unread_count": count})
}

// MarkAsRead handles PUT /notificaciones/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid id", err)
		return
	}

	p := middleware.MustGetPrincipal(c)
	if err := h.notificationService.MarkAsRead(c.Request.Context(), id, p.ID); err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "notification marked as read", nil)
}

// MarkAllAsRead handles PUT /notificaciones/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	if err := h.notificationService.MarkAllAsRead(c.Request.Context(), p.ID); err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "all notifications marked as read", nil)
}
