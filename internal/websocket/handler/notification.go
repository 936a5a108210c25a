// internal/websocket/handler/notification.go
package handlers

import (
	"context"
	"fmt"

	wstypes "flota-service/internal/domain/websocket"
	notifsvc "flota-service/internal/service/notification"
	ws "flota-service/internal/websocket"
)

// NotificationHandler lets clients acknowledge notifications in-band.
type NotificationHandler struct {
	notificationService *notifsvc.Service
}

func NewNotificationHandler(notificationService *notifsvc.Service) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) SupportedEvents() []wstypes.EventType {
	return []wstypes.EventType{
		wstypes.EventTypeNotificationRead,
		wstypes.EventTypeNotificationReadAll,
	}
}

func (h *NotificationHandler) HandleMessage(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	switch msg.Type {
	case wstypes.EventTypeNotificationRead:
		return h.handleMarkAsRead(ctx, client, msg)
	case wstypes.EventTypeNotificationReadAll:
		return h.handleMarkAllAsRead(ctx, client)
	default:
		return fmt.Errorf("unsupported event type: %s", msg.Type)
	}
}

func (h *NotificationHandler) handleMarkAsRead(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	var req struct {
		NotificationID int64 `json:"notification_id"`
	}
	if err := ws.MapToStruct(msg.Data, &req); err != nil {
		client.SendError("invalid_request", "Invalid mark as read request", err.Error())
		return err
	}

	if err := h.notificationService.MarkAsRead(ctx, req.NotificationID, client.UserID()); err != nil {
		client.SendError("mark_read_failed", "Failed to mark notification as read", err.Error())
		return err
	}

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeNotificationRead, map[string]interface{}{
		"notification_id": req.NotificationID,
		"success":         true,
	}))
	return nil
}

func (h *NotificationHandler) handleMarkAllAsRead(ctx context.Context, client *ws.Client) error {
	if err := h.notificationService.MarkAllAsRead(ctx, client.UserID()); err != nil {
		client.SendError("mark_all_read_failed", "Failed to mark all as read", err.Error())
		return err
	}

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeNotificationReadAll, map[string]interface{}{
		"success": true,
	}))
	return nil
}
