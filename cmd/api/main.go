package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dorian/quill/internal/api"
	"github.com/dorian/quill/internal/api/middleware"
	"github.com/dorian/quill/internal/config"
	"github.com/dorian/quill/internal/identity"
	"github.com/dorian/quill/internal/logger"
	"github.com/dorian/quill/internal/media"
	"github.com/dorian/quill/internal/repository"
	"github.com/dorian/quill/internal/service"
	"github.com/dorian/quill/internal/storage"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger.SetDefaultLogger(logger.New(nil))
	defer logger.Sync()
	baseLog := logger.GetDefault()

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		baseLog.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	creationRepo := repository.NewCreationRepository(db)
	usageRepo := repository.NewUsageRepository(db, cfg.Quota.FreeLimit)

	// Initialize object storage for generated images
	objectStorage, err := storage.NewS3Storage(&storage.S3Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		baseLog.WithError(err).Fatal("Failed to initialize storage")
	}

	ctx := context.Background()
	if err := objectStorage.EnsureBucket(ctx); err != nil {
		baseLog.WithError(err).Fatal("Failed to ensure storage bucket")
	}

	// Initialize provider clients
	llmService := service.NewLLMService(&service.LLMConfig{
		Model:   cfg.LLM.Model,
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
	})

	imageGenService := service.NewImageGenService(&service.ImageGenConfig{
		Model:   cfg.Image.Model,
		APIKey:  cfg.Image.APIKey,
		BaseURL: cfg.Image.BaseURL,
	})

	mediaClient := media.NewClient(&media.Config{
		BaseURL:   cfg.Media.BaseURL,
		Cloud:     cfg.Media.Cloud,
		APIKey:    cfg.Media.APIKey,
		APISecret: cfg.Media.APISecret,
	})

	identityClient := identity.NewClient(&identity.Config{
		BaseURL: cfg.Identity.BaseURL,
		APIKey:  cfg.Identity.APIKey,
	})

	// Initialize creation service
	creationService := service.NewCreationService(
		llmService,
		imageGenService,
		mediaClient,
		creationRepo,
		usageRepo,
		objectStorage,
	)

	// Setup router
	router := api.SetupRouter(
		creationService,
		identityClient,
		usageRepo,
		cfg.Server.Mode,
		middleware.CORSConfig{
			AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
			AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
		},
	)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		baseLog.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			baseLog.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	baseLog.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLog.WithError(err).Fatal("Server forced to shutdown")
	}

	baseLog.Info("Server exited")
}
