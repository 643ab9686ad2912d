package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"frichat/internal/config"
	"frichat/internal/db"
	"frichat/internal/handlers"
	"frichat/internal/logging"
	"frichat/internal/middleware"
	"frichat/internal/observability"
	"frichat/internal/repositories"
	"frichat/internal/service"
	"frichat/internal/sweeper"
	"frichat/internal/upload"
	"frichat/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Init(cfg.Env)

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer database.Close()

	if cfg.AMQPURL != "" {
		publisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Warn().Err(err).Msg("amqp unavailable, events will not be mirrored")
		} else {
			observability.SetPublisher(publisher)
			defer publisher.Close()
		}
	}

	store, err := upload.NewStore(cfg.UploadDir, cfg.MaxFileSize, cfg.AllowedMimeTypes())
	if err != nil {
		log.Fatal().Err(err).Msg("prepare upload store")
	}

	userRepo := repositories.NewUserRepo(database)
	chatRepo := repositories.NewChatRepo(database)
	membershipRepo := repositories.NewMembershipRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	reactionRepo := repositories.NewReactionRepo(database)
	pinRepo := repositories.NewPinRepo(database)

	chatService := service.NewChatService(chatRepo, membershipRepo, userRepo)
	messageService := service.NewMessageService(messageRepo, reactionRepo, membershipRepo, chatRepo, userRepo)
	pinService := service.NewPinService(pinRepo, messageRepo, membershipRepo)

	hub := ws.NewHub()

	chatHandler := handlers.NewChatHandler(chatService, hub)
	messageHandler := handlers.NewMessageHandler(messageService, messageRepo, store, hub)
	pinHandler := handlers.NewPinHandler(pinService, hub)
	wsHandler := ws.NewHandler(hub, messageService, membershipRepo, userRepo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go sweeper.New(pinRepo, cfg.PinSweepInterval).Run(ctx)

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.CORSOrigin))
	router.Use(observability.HTTPMetricsMiddleware())

	rl := middleware.NewRateLimiter(cfg.RateLimitQPS, cfg.RateLimitBurst)
	defer rl.Stop()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static("/uploads", cfg.UploadDir)

	auth := middleware.AuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api", rl.Middleware(), auth)
	{
		api.GET("/users/search", chatHandler.SearchUsers)

		api.POST("/chats", chatHandler.CreateChat)
		api.GET("/chats", chatHandler.ListChats)
		api.GET("/chats/:chat_id", chatHandler.GetChat)
		api.DELETE("/chats/:chat_id", chatHandler.DeleteChat)
		api.POST("/chats/:chat_id/members", chatHandler.AddMember)
		api.DELETE("/chats/:chat_id/members/:user_id", chatHandler.RemoveMember)

		api.GET("/chats/:chat_id/messages", messageHandler.ListMessages)
		api.POST("/chats/:chat_id/messages", messageHandler.SendMessage)
		api.PATCH("/messages/:message_id/status", messageHandler.UpdateStatus)
		api.POST("/messages/:message_id/reactions", messageHandler.AddReaction)
		api.DELETE("/messages/:message_id/reactions/:emoji", messageHandler.RemoveReaction)
		api.DELETE("/messages/:message_id", messageHandler.DeleteMessage)
		api.POST("/upload", messageHandler.Upload)

		api.POST("/messages/:message_id/pin", pinHandler.PinMessage)
		api.DELETE("/messages/:message_id/pin", pinHandler.UnpinMessage)
		api.GET("/chats/:chat_id/pins", pinHandler.ListPins)
	}

	router.GET("/ws", auth, wsHandler.Handle)

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting chat service")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
