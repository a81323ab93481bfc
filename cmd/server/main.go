// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/iyunix/go-gemchat/internal/config"
	"github.com/iyunix/go-gemchat/internal/handlers"
	"github.com/iyunix/go-gemchat/internal/ratelimit"
	"github.com/iyunix/go-gemchat/internal/repository/chat"
	"github.com/iyunix/go-gemchat/internal/repository/session"
	"github.com/iyunix/go-gemchat/internal/services"
	"github.com/iyunix/go-gemchat/internal/services/ai"
	"github.com/iyunix/go-gemchat/internal/services/conversation"
	"github.com/iyunix/go-gemchat/internal/services/render"
	"github.com/iyunix/go-gemchat/web"
)

func main() {
	cfg := config.Load()
	logger := services.NewLogger("gemchat", cfg.Environment, cfg.LogLevel)

	db, err := gorm.Open(sqlite.Open(cfg.SessionDB), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// --- Repositories ---
	var chatRepo chat.ChatRepository
	switch cfg.ChatStore {
	case config.StoreSQLite:
		chatRepo, err = chat.NewGormChatRepository(db, logger)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize chat store: %v", err)
		}
	default:
		jsonRepo := chat.NewJSONChatRepository(cfg.DataFile, logger)
		go func() {
			if err := jsonRepo.Watch(rootCtx); err != nil {
				logger.Warn("chat file watcher stopped", "error", err)
			}
		}()
		chatRepo = jsonRepo
	}

	sessionRepo, err := session.NewGormSessionRepository(db, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize session store: %v", err)
	}

	// --- Services ---
	aiConfig := ai.DefaultConfig()
	aiConfig.APIKey = cfg.GeminiAPIKey
	aiConfig.BaseURL = cfg.LLMBaseURL
	aiConfig.Model = cfg.ChatModel
	aiConfig.Timeout = cfg.LLMTimeout
	provider, err := ai.NewOpenAIProvider(aiConfig)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize AI provider: %v", err)
	}

	chatService, err := services.NewChatService(chatRepo, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Chat Service: %v", err)
	}

	conversations, err := conversation.NewManager(conversation.Config{
		Model:        cfg.ChatModel,
		SystemPrompt: cfg.SystemPrompt,
		CacheSize:    cfg.SessionCacheSize,
	}, sessionRepo, provider, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize conversations: %v", err)
	}

	limiter := ratelimit.NewMemoryRateLimiter(&ratelimit.Config{
		WindowSize:    cfg.RateLimitWindow,
		MaxRequests:   cfg.RateLimitMax,
		CleanupPeriod: 5 * cfg.RateLimitWindow,
		TrustProxy:    cfg.TrustedProxy,
	})
	defer limiter.Close()

	// --- Handlers ---
	chatHandler, err := handlers.NewChatHandler(chatService, conversations, render.NewMarkdownRenderer(), logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Chat Handler: %v", err)
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Chat:    chatHandler,
		Pages:   handlers.NewPageHandler(web.Templates(), logger),
		Logs:    handlers.NewLogHandler(logger),
		Static:  web.Static(),
		Limiter: limiter,
		Logger:  logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("server starting",
		"addr", srv.Addr,
		"model", cfg.ChatModel,
		"chat_store", cfg.ChatStore,
		"url", "http://localhost"+srv.Addr,
	)

	// --- Start Server in Goroutine ---
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server gracefully")
	stopBackground()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
