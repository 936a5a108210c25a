// internal/handlers/ticket/handler.go
package ticket

import (
	"net/http"

	"flota-service/internal/domain/ticket"
	"flota-service/internal/middleware"
	"flota-service/internal/pkg/response"
	ticketsvc "flota-service/internal/service/ticket"

	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	ticketService *ticketsvc.Service
}

func NewTicketHandler(ticketService *ticketsvc.Service) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// Create handles POST /tickets (public, no auth)
func (h *TicketHandler) Create(c *gin.Context) {
	var req ticket.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	t, err := h.ticketService.Create(c.Request.Context(), &req)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "ticket created", t)
}

// Get handles GET /tickets/:referencia (public)
func (h *TicketHandler) Get(c *gin.Context) {
	t, err := h.ticketService.Get(c.Request.Context(), c.Param("referencia"))
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "ticket retrieved", t)
}

// List handles GET /tickets?estado= (admin)
func (h *TicketHandler) List(c *gin.Context) {
	tickets, err := h.ticketService.List(c.Request.Context(), *middleware.MustGetPrincipal(c), c.Query("estado"))
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "tickets retrieved", tickets)
}

// Close handles PUT /tickets/:referencia/close (admin)
func (h *TicketHandler) Close(c *gin.Context) {
	if err := h.ticketService.Close(c.Request.Context(), *middleware.MustGetPrincipal(c), c.Param("referencia")); err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "ticket closed", nil)
}
