// internal/websocket/handler/chat.go
package handlers

import (
	"context"
	"fmt"

	"flota-service/internal/domain/chat"
	"flota-service/internal/domain/unit"
	"flota-service/internal/domain/user"
	wstypes "flota-service/internal/domain/websocket"
	chatsvc "flota-service/internal/service/chat"
	ws "flota-service/internal/websocket"
)

// ChatHandler relays support-chat messages arriving over the socket.
type ChatHandler struct {
	chatService *chatsvc.Service
}

func NewChatHandler(chatService *chatsvc.Service) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) SupportedEvents() []wstypes.EventType {
	return []wstypes.EventType{
		wstypes.EventTypeChatSend,
		wstypes.EventTypeChatHistory,
	}
}

func (h *ChatHandler) HandleMessage(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	switch msg.Type {
	case wstypes.EventTypeChatSend:
		return h.handleSend(ctx, client, msg)
	case wstypes.EventTypeChatHistory:
		return h.handleHistory(ctx, client, msg)
	default:
		return fmt.Errorf("unsupported event type: %s", msg.Type)
	}
}

func principalOf(client *ws.Client) user.Principal {
	return user.Principal{
		ID:     client.UserID(),
		Admin:  client.IsAdmin(),
		Unidad: unit.Normalize(client.Unidad()),
	}
}

func (h *ChatHandler) handleSend(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	var req chat.SendRequest
	if err := ws.MapToStruct(msg.Data, &req); err != nil {
		client.SendError("invalid_request", "Invalid chat message", err.Error())
		return err
	}

	if _, err := h.chatService.Send(ctx, principalOf(client), &req); err != nil {
		client.SendError("chat_send_failed", "Failed to send message", err.Error())
		return err
	}
	return nil
}

func (h *ChatHandler) handleHistory(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	var req struct {
		ThreadUser int64 `json:"thread_user"`
		Limit      int   `json:"limit"`
	}
	if err := ws.MapToStruct(msg.Data, &req); err != nil {
		client.SendError("invalid_request", "Invalid history request", err.Error())
		return err
	}

	messages, err := h.chatService.Thread(ctx, principalOf(client), req.ThreadUser, req.Limit)
	if err != nil {
		client.SendError("chat_history_failed", "Failed to load thread", err.Error())
		return err
	}

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeChatHistory, map[string]interface{}{
		"messages": messages,
	}))
	return nil
}
