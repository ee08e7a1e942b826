package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "mindhaven/internal/app"
	"mindhaven/internal/bootstrap"
	"mindhaven/internal/cache"
	"mindhaven/internal/repository"
	"mindhaven/internal/transport/http/handler"
	"mindhaven/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	sessionRepo := repository.NewSessionRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)
	ticketRepo := repository.NewTicketRepository(app.MySQL)
	appointmentRepo := repository.NewAppointmentRepository(app.MySQL)

	transcriptCache := cache.NewTranscriptCache(
		app.Redis,
		time.Duration(app.Config.Redis.TranscriptTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.TranscriptDirtyTTLSeconds)*time.Second,
	)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	ticketService := appsvc.NewTicketService(ticketRepo, sessionRepo, app.EventPublisher)
	chatService := appsvc.NewChatService(sessionRepo, messageRepo, ticketService, transcriptCache)
	appointmentService := appsvc.NewAppointmentService(appointmentRepo, ticketRepo)

	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(chatService)
	ticketHandler := handler.NewTicketHandler(ticketService)
	appointmentHandler := handler.NewAppointmentHandler(appointmentService)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	chatGroup := v1.Group("/chat")
	chatGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	chatGroup.POST("/sessions", chatHandler.CreateSession)
	chatGroup.GET("/sessions", chatHandler.ListSessions)
	chatGroup.POST("/messages", chatHandler.SendMessage)
	chatGroup.GET("/history", chatHandler.GetHistory)

	ticketGroup := v1.Group("/tickets")
	ticketGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	ticketGroup.POST("", ticketHandler.Raise)
	ticketGroup.GET("/open", ticketHandler.ListOpen)
	ticketGroup.POST("/:id/claim", ticketHandler.Claim)
	ticketGroup.POST("/:id/resolve", ticketHandler.Resolve)
	ticketGroup.GET("/:id/status", ticketHandler.Status)

	appointmentGroup := v1.Group("/appointments")
	appointmentGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	appointmentGroup.POST("", appointmentHandler.Request)
	appointmentGroup.GET("", appointmentHandler.List)

	return router
}
