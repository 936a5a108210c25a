// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"time"

	"flota-service/internal/config"
	"flota-service/internal/db"
	authHandler "flota-service/internal/handlers/auth"
	chatHandler "flota-service/internal/handlers/chat"
	notifyHandler "flota-service/internal/handlers/notification"
	reportHandler "flota-service/internal/handlers/report"
	ticketHandler "flota-service/internal/handlers/ticket"
	vehicleHandler "flota-service/internal/handlers/vehicle"
	wsHandler "flota-service/internal/handlers/websocket"
	"flota-service/internal/middleware"
	"flota-service/internal/pkg/jwt"
	"flota-service/internal/pkg/session"
	"flota-service/internal/repository/postgres"
	"flota-service/internal/service/access"
	authsvc "flota-service/internal/service/auth"
	chatsvc "flota-service/internal/service/chat"
	"flota-service/internal/service/email"
	historysvc "flota-service/internal/service/history"
	notifsvc "flota-service/internal/service/notification"
	reportsvc "flota-service/internal/service/report"
	ticketsvc "flota-service/internal/service/ticket"
	vehiclesvc "flota-service/internal/service/vehicle"
	"flota-service/internal/websocket"
	wsHandlers "flota-service/internal/websocket/handler"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	return &Server{
		cfg:    config.Load(),
		engine: gin.New(),
	}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.NewPostgresPool(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := db.Migrate(s.cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info("postgres connected and migrated")

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("redis connected")

	// ----- Token / session layer -----
	if s.cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	jwtManager := jwt.NewManager(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.JWTTTL)
	sessionManager := session.NewManager(redisClient)
	rateLimiter := session.NewRateLimiter(redisClient)

	// ----- Email -----
	emailSender := email.NewSender(
		s.cfg.SMTPHost,
		s.cfg.SMTPPort,
		s.cfg.SMTPUser,
		s.cfg.SMTPPass,
		s.cfg.SMTPFromName,
		s.cfg.SMTPSecure,
	)

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	userRepo := postgres.NewUserRepository(pool)
	vehicleRepo := postgres.NewVehicleRepository(pool)
	historyRepo := postgres.NewHistoryRepository(pool)
	notifyRepo := postgres.NewNotificationRepository(pool)
	chatRepo := postgres.NewChatRepository(pool)
	ticketRepo := postgres.NewTicketRepository(pool)

	// ----- Access policy / root admin -----
	policy := access.NewPolicy(s.cfg.ProtectedUserIDs)
	authService := authsvc.NewService(userRepo, jwtManager, sessionManager, rateLimiter, policy, logger)

	seedCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	rootID, err := authService.EnsureRootAdmin(seedCtx, s.cfg.RootAdminEmail, s.cfg.RootAdminPassword, s.cfg.RootAdminName)
	cancel()
	if err != nil {
		logger.Error("failed to seed root admin", zap.Error(err))
	} else if rootID != 0 {
		policy.ProtectedIDs[rootID] = true
	}

	// ----- WebSocket hub -----
	hub := websocket.NewHub(authService, logger)
	go hub.Run(ctx)

	// ----- Services -----
	notifService := notifsvc.NewService(notifyRepo, userRepo, hub, emailSender, logger)
	ledger := historysvc.NewLedger(historyRepo, logger)
	vehicleService := vehiclesvc.NewService(vehicleRepo, ledger, policy, dbWrapper, notifService, logger)
	chatService := chatsvc.NewService(chatRepo, hub, notifService, logger)
	ticketService := ticketsvc.NewService(ticketRepo, notifService, logger)
	reportService := reportsvc.NewService(vehicleRepo, ticketRepo)

	// WebSocket message handlers
	hub.RegisterHandler(wsHandlers.NewChatHandler(chatService))
	hub.RegisterHandler(wsHandlers.NewNotificationHandler(notifService))

	// ----- Handlers -----
	authH := authHandler.NewAuthHandler(authService, logger)
	vehicleH := vehicleHandler.NewVehicleHandler(vehicleService, logger)
	notifH := notifyHandler.NewNotificationHandler(notifService)
	chatH := chatHandler.NewChatHandler(chatService)
	ticketH := ticketHandler.NewTicketHandler(ticketService)
	reportH := reportHandler.NewReportHandler(reportService)
	wsH := wsHandler.NewWebSocketHandler(hub, logger)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	SetupRouter(s.engine, &Handlers{
		Auth:           authH,
		Vehicle:        vehicleH,
		Notification:   notifH,
		Chat:           chatH,
		Ticket:         ticketH,
		Report:         reportH,
		WS:             wsH,
		AuthMiddleware: authMiddleware,
	})

	logger.Info("server starting", zap.String("addr", s.cfg.HTTPAddr))
	return s.engine.Run(s.cfg.HTTPAddr)
}
