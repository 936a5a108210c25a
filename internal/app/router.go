// internal/app/router.go
package app

import (
	authHandler "flota-service/internal/handlers/auth"
	chatHandler "flota-service/internal/handlers/chat"
	notifyHandler "flota-service/internal/handlers/notification"
	reportHandler "flota-service/internal/handlers/report"
	ticketHandler "flota-service/internal/handlers/ticket"
	vehicleHandler "flota-service/internal/handlers/vehicle"
	wsHandler "flota-service/internal/handlers/websocket"
	"flota-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth           *authHandler.AuthHandler
	Vehicle        *vehicleHandler.VehicleHandler
	Notification   *notifyHandler.NotificationHandler
	Chat           *chatHandler.ChatHandler
	Ticket         *ticketHandler.TicketHandler
	Report         *reportHandler.ReportHandler
	WS             *wsHandler.WebSocketHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.WS.HandleConnection)

	// ==================== Public routes ====================
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/tickets", h.Ticket.Create)
	api.GET("/tickets/:referencia", h.Ticket.Get)

	// ==================== Authenticated routes ====================
	auth := api.Group("/auth")
	auth.Use(h.AuthMiddleware.Auth())
	{
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", h.Auth.Profile)
		auth.POST("/push-token", h.Auth.RegisterPushToken)
	}

	// ==================== Vehicles ====================
	vehiculos := api.Group("/vehiculos")
	vehiculos.Use(h.AuthMiddleware.Auth())
	{
		vehiculos.GET("", h.Vehicle.List)
		vehiculos.POST("", h.Vehicle.Create)
		vehiculos.GET("/dashboard", h.Vehicle.Dashboard)
		vehiculos.GET("/:id", h.Vehicle.Get)
		vehiculos.PUT("/:id", h.Vehicle.Update)
		vehiculos.DELETE("/:id", h.Vehicle.Delete)

		vehiculos.GET("/:id/historial/:kind", h.Vehicle.ListHistory)
		vehiculos.POST("/:id/historial/:kind", h.Vehicle.AppendHistory)
		vehiculos.DELETE("/:id/historial/:kind", h.Vehicle.DeleteAllHistory)
		vehiculos.DELETE("/:id/historial/:kind/ultimo", h.Vehicle.DeleteLastHistory)
		vehiculos.DELETE("/:id/historial/:kind/:entryId", h.Vehicle.DeleteOneHistory)
	}

	// ==================== Users (admin) ====================
	usuarios := api.Group("/usuarios")
	usuarios.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequireAdmin())
	{
		usuarios.GET("", h.Auth.ListUsers)
		usuarios.POST("", h.Auth.CreateUser)
		usuarios.PUT("/:id", h.Auth.UpdateUser)
		usuarios.DELETE("/:id", h.Auth.DeleteUser)
	}

	// ==================== Notifications ====================
	notificaciones := api.Group("/notificaciones")
	notificaciones.Use(h.AuthMiddleware.Auth())
	{
		notificaciones.GET("", h.Notification.List)
		notificaciones.GET("/unread-count", h.Notification.UnreadCount)
		notificaciones.PUT("/read-all", h.Notification.MarkAllAsRead)
		notificaciones.PUT("/:id/read", h.Notification.MarkAsRead)
	}

	// ==================== Chat ====================
	chat := api.Group("/chat")
	chat.Use(h.AuthMiddleware.Auth())
	{
		chat.POST("/mensajes", h.Chat.Send)
		chat.GET("/mensajes", h.Chat.Thread)
		chat.GET("/threads", h.Chat.Threads)
	}

	// ==================== Tickets (admin) ====================
	ticketsAdmin := api.Group("/tickets")
	ticketsAdmin.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequireAdmin())
	{
		ticketsAdmin.GET("", h.Ticket.List)
		ticketsAdmin.PUT("/:referencia/close", h.Ticket.Close)
	}

	// ==================== Reports (admin) ====================
	reportes := api.Group("/reportes")
	reportes.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequireAdmin())
	{
		reportes.GET("/dashboard", h.Report.Dashboard)
	}
}
