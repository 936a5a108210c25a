// internal/websocket/hub.go
package websocket

import (
	"context"
	"sync"

	wstypes "flota-service/internal/domain/websocket"
	"flota-service/internal/pkg/jwt"

	"go.uber.org/zap"
)

// TokenValidator checks a raw bearer token against the signing key and the
// live session store.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*jwt.Claims, error)
}

type Hub struct {
	// Registered clients by user ID
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	Register   chan *Client
	unregister chan *Client

	broadcast chan *BroadcastMessage

	handlerRegistry *HandlerRegistry

	validator TokenValidator
	logger    *zap.Logger
}

type BroadcastMessage struct {
	UserIDs []int64
	Channel wstypes.ChannelType
	Message *wstypes.WSMessage
}

func NewHub(validator TokenValidator, logger *zap.Logger) *Hub {
	return &Hub{
		clients:         make(map[int64]map[*Client]bool),
		Register:        make(chan *Client),
		unregister:      make(chan *Client),
		broadcast:       make(chan *BroadcastMessage, 256),
		handlerRegistry: NewHandlerRegistry(),
		validator:       validator,
		logger:          logger,
	}
}

// AuthenticateClient validates the token and builds the client's identity.
func (h *Hub) AuthenticateClient(ctx context.Context, token string) (*ClientAuth, error) {
	claims, err := h.validator.ValidateToken(ctx, token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &ClientAuth{
		UserID: claims.UserID,
		JTI:    claims.ID,
		Admin:  claims.Admin,
		Unidad: claims.Unidad,
	}, nil
}

func (h *Hub) RegisterHandler(handler MessageHandler) {
	h.handlerRegistry.Register(handler)
}

// HandleClientMessage dispatches a client message to its registered handler.
func (h *Hub) HandleClientMessage(ctx context.Context, client *Client, msg *wstypes.WSMessage) error {
	handler, exists := h.handlerRegistry.GetHandler(msg.Type)
	if !exists {
		return nil // built-in events are handled by the client itself
	}
	return handler.HandleMessage(ctx, client, msg)
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.send(msg)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Info("websocket client connected",
		zap.Int64("user_id", client.userID),
		zap.Int("total", h.totalClients()),
	)

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]interface{}{
		"user_id": client.userID,
		"admin":   client.admin,
		"unidad":  client.unidad,
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			client.Close()

			if len(clients) == 0 {
				delete(h.clients, client.userID)
			}

			h.logger.Info("websocket client disconnected",
				zap.Int64("user_id", client.userID),
				zap.Int("total", h.totalClients()),
			)
		}
	}
}

func (h *Hub) send(msg *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if msg.UserIDs == nil {
		for _, clients := range h.clients {
			for client := range clients {
				if client.IsSubscribed(msg.Channel) {
					client.SendMessage(msg.Message)
				}
			}
		}
		return
	}

	for _, userID := range msg.UserIDs {
		if clients, ok := h.clients[userID]; ok {
			for client := range clients {
				if client.IsSubscribed(msg.Channel) {
					client.SendMessage(msg.Message)
				}
			}
		}
	}
}

// BroadcastNotification pushes one notification to all of a user's
// connections subscribed to the notifications channel.
func (h *Hub) BroadcastNotification(userID int64, data *wstypes.NotificationData) {
	h.broadcast <- &BroadcastMessage{
		UserIDs: []int64{userID},
		Channel: wstypes.ChannelNotifications,
		Message: wstypes.NewMessage(wstypes.EventTypeNotification, data),
	}
}

func (h *Hub) BroadcastNotificationCount(userID int64, count int64) {
	h.broadcast <- &BroadcastMessage{
		UserIDs: []int64{userID},
		Channel: wstypes.ChannelNotifications,
		Message: wstypes.NewMessage(wstypes.EventTypeNotificationCount, map[string]interface{}{
			"unread_count": count,
		}),
	}
}

// BroadcastChatMessage relays a stored chat message to both thread
// participants' live connections.
func (h *Hub) BroadcastChatMessage(userIDs []int64, data *wstypes.ChatMessageData) {
	h.broadcast <- &BroadcastMessage{
		UserIDs: userIDs,
		Channel: wstypes.ChannelChat,
		Message: wstypes.NewMessage(wstypes.EventTypeChatMessage, data),
	}
}

func (h *Hub) IsUserConnected(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalClients()
}

func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			client.Close()
		}
	}
	h.clients = make(map[int64]map[*Client]bool)
}
