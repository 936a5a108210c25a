// internal/handlers/chat/handler.go
package chat

import (
	"net/http"
	"strconv"

	"flota-service/internal/domain/chat"
	"flota-service/internal/middleware"
	"flota-service/internal/pkg/response"
	chatsvc "flota-service/internal/service/chat"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService *chatsvc.Service
}

func NewChatHandler(chatService *chatsvc.Service) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Send handles POST /chat/mensajes; the REST fallback for clients without
// a live socket.
func (h *ChatHandler) Send(c *gin.Context) {
	var req chat.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	m, err := h.chatService.Send(c.Request.Context(), *middleware.MustGetPrincipal(c), &req)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "message sent", m)
}

// Thread handles GET /chat/mensajes?thread_user=&limit=
func (h *ChatHandler) Thread(c *gin.Context) {
	threadUser, _ := strconv.ParseInt(c.Query("thread_user"), 10, 64)
	limit, _ := strconv.Atoi(c.Query("limit"))

	messages, err := h.chatService.Thread(c.Request.Context(), *middleware.MustGetPrincipal(c), threadUser, limit)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "thread retrieved", messages)
}

// Threads handles GET /chat/threads (admin inbox)
func (h *ChatHandler) Threads(c *gin.Context) {
	threads, err := h.chatService.Threads(c.Request.Context(), *middleware.MustGetPrincipal(c))
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "threads retrieved", threads)
}
