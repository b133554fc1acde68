package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nakamago/pilgrimage/internal/config"
	"github.com/nakamago/pilgrimage/internal/handlers"
	"github.com/nakamago/pilgrimage/internal/logger"
	"github.com/nakamago/pilgrimage/internal/middleware"
	"github.com/nakamago/pilgrimage/internal/services"
	"github.com/nakamago/pilgrimage/internal/storage"
)

func main() {
	cfg := config.Load()

	log := logger.Setup(cfg)

	log.Info("Starting Pilgrimage API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"model_name", cfg.OpenAIModel)

	if cfg.OpenAIAPIKey == "" {
		log.Error("OpenAI API key is required")
		os.Exit(1)
	}
	var guideService services.GuideService = services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel)

	store := storage.NewRedisStorage(cfg.RedisAddr, cfg.RedisPassword, cfg.DataDir, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	// Load the catalog up front so a bad data file fails the boot, not
	// the first request.
	cat, err := store.GetCatalog(storageCtx)
	if err != nil {
		log.Error("Failed to load location catalog", "error", err)
		os.Exit(1)
	}
	log.Info("Location catalog loaded", "locations", cat.Len(), "series", len(cat.Series()))

	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer initCancel()
	if err := guideService.InitModel(initCtx, cfg.OpenAIModel); err != nil {
		log.Error("Failed to initialize guide model", "error", err, "model", cfg.OpenAIModel)
		os.Exit(1)
	}

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, guideService, log)
	mux.Handle("/health", healthHandler)

	chatHandler := handlers.NewChatHandler(guideService, log, store)
	mux.Handle("/v1/chat", chatHandler)

	sessionHandler := handlers.NewSessionHandler(store, log)
	mux.Handle("/v1/session", sessionHandler)
	mux.Handle("/v1/session/", sessionHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
