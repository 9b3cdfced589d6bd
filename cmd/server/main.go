package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dantechat/internal/config"
	"dantechat/internal/handler"
	"dantechat/internal/logger"
	"dantechat/internal/repository"
	"dantechat/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("Dante Propiedades chat backend",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Property store
	store, err := repository.NewPropertyStore(
		cfg.Store.Driver,
		cfg.Store.PropertiesDSN,
		cfg.Store.MaxConnections,
		cfg.Store.MaxIdleConns,
		cfg.Search.Limit,
	)
	if err != nil {
		zlog.Fatal("Failed to open property store", zap.Error(err))
	}
	defer store.Close()

	// Load the listing feed when present; the store keeps whatever it
	// already has otherwise.
	if _, err := os.Stat(cfg.Store.FeedPath); err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		count, err := store.LoadFeed(ctx, cfg.Store.FeedPath)
		cancel()
		if err != nil {
			zlog.Fatal("Failed to load listing feed", zap.Error(err))
		}
		zlog.Info("Listing feed loaded", zap.Int("properties", count))
	} else {
		zlog.Warn("Listing feed not found, keeping existing data",
			zap.String("path", cfg.Store.FeedPath))
	}

	// Conversation log
	convlog, err := repository.NewConversationLog(cfg.Store.Driver, cfg.Store.ConversationsDSN, zlog)
	if err != nil {
		zlog.Fatal("Failed to open conversation log", zap.Error(err))
	}
	defer convlog.Close()

	if !cfg.Gemini.Enabled {
		zlog.Warn("No Gemini credentials configured - every chat will return the exhaustion reply",
			zap.String("hint", "set the GEMINI_KEYS environment variable"))
	}

	// Services
	geminiClient := service.NewGeminiClient(&cfg.Gemini)
	pool := service.NewCredentialPool(cfg.Gemini.APIKeys)
	rotation := service.NewRotation(pool, geminiClient.Generate, zlog)
	cache := service.NewResultCache(time.Duration(cfg.Search.CacheTTL) * time.Second)
	metrics := service.NewMetrics()
	chatService := service.NewChatService(store, convlog, cache, rotation, metrics, cfg.Search.HistoryLimit, zlog)

	// Handlers
	chatHandler := handler.NewChatHandler(chatService, zlog)
	propertiesHandler := handler.NewPropertiesHandler(chatService, 20)
	adminHandler := handler.NewAdminHandler(chatService)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.AllowedOrigins, ",")
	corsConfig.AllowMethods = strings.Split(cfg.Server.AllowedMethods, ",")
	corsConfig.AllowHeaders = strings.Split(cfg.Server.AllowedHeaders, ",")
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "dante-propiedades-chat",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	router.POST("/chat", chatHandler.Chat)
	router.GET("/properties", propertiesHandler.Search)
	router.GET("/properties/:id", propertiesHandler.Get)
	router.GET("/logs", adminHandler.Logs)
	router.GET("/status", adminHandler.Status)
	router.GET("/metrics", adminHandler.Metrics)
	router.DELETE("/cache", adminHandler.ClearCache)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	zlog.Info("Starting server", zap.String("addr", addr))

	go func() {
		if err := router.Run(addr); err != nil {
			zlog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down server")
}
