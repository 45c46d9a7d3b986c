package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eventhub/event-gateway/internal/auth"
	"github.com/eventhub/event-gateway/internal/clients"
	"github.com/eventhub/event-gateway/internal/config"
	"github.com/eventhub/event-gateway/internal/events"
	"github.com/eventhub/event-gateway/internal/handlers"
	"github.com/eventhub/event-gateway/internal/prefs"
	"github.com/eventhub/event-gateway/internal/session"
	"github.com/eventhub/event-gateway/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	// Connect to Redis when commit notifications are enabled
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Fatal("Error parsing Redis URL", zap.Error(err))
		}
		redisClient = redis.NewClient(redisOpts)
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		logger.Info("Connected to Redis", zap.String("url", cfg.Redis.URL))
	}
	publisher := events.NewPublisher(redisClient, cfg.Redis.Channel, logger.Named("publisher"))

	// Local preferences store
	prefsStore, err := prefs.Open(cfg.Prefs.Path)
	if err != nil {
		logger.Fatal("Failed to open prefs store", zap.Error(err))
	}
	defer prefsStore.Close()

	// Upstream clients
	eventClient := clients.NewEventClient(cfg.EventsAPI.BaseURL, cfg.EventsAPI.Timeout, logger.Named("events_api"))
	authClient := clients.NewAuthClient(cfg.EventsAPI.BaseURL, cfg.EventsAPI.Timeout, logger.Named("auth_api"))

	// Core: store, session manager, auth context
	eventStore := store.New(eventClient, logger.Named("store"))
	sessions := session.NewManager(eventClient, eventStore, logger.Named("session"))
	authCtx := auth.NewContext(prefsStore, logger.Named("auth"))
	if err := authCtx.Restore(context.Background()); err != nil {
		logger.Warn("Could not restore persisted session", zap.Error(err))
	}

	// Initial collection load; failure is recoverable and retried on demand.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.EventsAPI.Timeout)
	if err := eventStore.Load(loadCtx); err != nil {
		logger.Warn("Initial event load failed", zap.Error(err))
	}
	cancelLoad()

	// Set Gin mode
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(eventStore, sessions, authCtx, publisher, logger.Named("events"))
	authHandler := handlers.NewAuthHandler(authClient, authCtx, logger.Named("auth"))
	prefsHandler := handlers.NewPrefsHandler(prefsStore, logger.Named("prefs"))

	// API routes
	api := r.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/logout", authHandler.Logout)
			authRoutes.GET("/me", authHandler.Me)
		}

		eventRoutes := api.Group("/events")
		{
			eventRoutes.GET("", eventHandler.ListEvents)
			eventRoutes.POST("", eventHandler.CreateEvent)
			eventRoutes.PUT("/:id", eventHandler.UpdateEvent)
			eventRoutes.DELETE("/:id", eventHandler.DeleteEvent)
		}

		prefRoutes := api.Group("/prefs")
		{
			prefRoutes.GET("/onboarding", prefsHandler.GetOnboarding)
			prefRoutes.POST("/onboarding", prefsHandler.MarkOnboarding)
		}
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Start server
	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      cors.Default().Handler(r),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Starting event gateway", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func initLogger(level string) *zap.Logger {
	var logLevel zapcore.Level
	switch level {
	case "debug":
		logLevel = zap.DebugLevel
	case "info":
		logLevel = zap.InfoLevel
	case "warn":
		logLevel = zap.WarnLevel
	case "error":
		logLevel = zapcore.ErrorLevel
	default:
		logLevel = zap.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(logLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	return logger
}
