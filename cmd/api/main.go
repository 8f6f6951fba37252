package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"chatdash/internal/adapter/api"
	"chatdash/internal/adapter/api/handler"
	apimiddleware "chatdash/internal/adapter/api/middleware"
	"chatdash/internal/adapter/api/router"
	"chatdash/internal/adapter/repository"
	"chatdash/internal/infrastructure/cache"
	"chatdash/internal/infrastructure/docstore"
	"chatdash/internal/infrastructure/firebase"
	"chatdash/internal/infrastructure/ratelimit"
	"chatdash/internal/infrastructure/storage"
	"chatdash/internal/infrastructure/websocket"
	"chatdash/internal/usecase"
	"chatdash/pkg/config"
	"chatdash/pkg/logger"
	"chatdash/pkg/response"
)

func main() {
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, identity, opts := setupBackend(ctx, cfg)
	defer store.Close()

	var presenceCache usecase.PresenceCache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisPresenceCache(ctx, cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.PresenceCacheTTL,
		})
		if err != nil {
			logger.Fatal("Failed to initialize presence cache: %v", err)
		}
		defer redisCache.Close()
		presenceCache = redisCache
		logger.Info("Presence cache enabled at %s", cfg.RedisAddr)
	}

	var mediaStorage usecase.MediaStorage
	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opts...)
		if err != nil {
			logger.Fatal("Failed to initialize Cloud Storage: %v", err)
		}
		defer storageClient.Close()
		mediaStorage = storageClient
	} else {
		logger.Warn("STORAGE_BUCKET is not set, media uploads are disabled")
	}

	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()
	defer rateLimiter.Stop()

	userRepo := repository.NewUserRepository(store)
	friendRepo := repository.NewFriendRepository(store)
	chatRepo := repository.NewChatRepository(store)
	messageRepo := repository.NewMessageRepository(store)

	userUseCase := usecase.NewUserUseCase(userRepo, presenceCache)
	friendUseCase := usecase.NewFriendUseCase(friendRepo, userRepo, rateLimiter)
	messageUseCase := usecase.NewMessageUseCase(messageRepo, chatRepo, rateLimiter, cfg.MessageEditWindow)
	chatUseCase := usecase.NewChatUseCase(chatRepo, userRepo, friendUseCase, messageUseCase, rateLimiter)
	mediaUseCase := usecase.NewMediaUseCase(mediaStorage)
	dashboardUseCase := usecase.NewDashboardUseCase(chatRepo, userUseCase, cfg.FeedBatchSize, usecase.PresenceOptions{
		InactiveTimeout: cfg.PresenceInactiveTimeout,
		ActiveDelay:     cfg.PresenceActiveDelay,
	})

	wsManager := websocket.NewManager(websocket.Services{
		Dashboard: dashboardUseCase,
		Users:     userUseCase,
		Chats:     chatUseCase,
		Messages:  messageUseCase,
	}, rateLimiter, cfg.SearchDebounce, cfg.FeedBatchSize)
	wsManager.Start(ctx)

	handler.Setup(userUseCase, friendUseCase, chatUseCase, messageUseCase, mediaUseCase)
	handler.SetupHealthHandler(wsManager, cfg.StoreDriver)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	if len(cfg.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.AllowedOrigins}))
	} else {
		e.Use(middleware.CORS())
	}

	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if respErr := response.Error(c, err); respErr != nil {
			logger.Error("Failed to write error response: %v", respErr)
		}
	}

	authMiddleware := apimiddleware.NewAuthMiddleware(identity, userUseCase)
	wsHandler := handler.NewWebSocketHandler(wsManager, cfg.AllowedOrigins)

	router.Setup(e, authMiddleware, rateLimiter, wsHandler)

	go func() {
		logger.Info("Starting server on port %s (store: %s)...", cfg.ServerPort, cfg.StoreDriver)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}

// setupBackend selects the document store and identity provider. The memory
// driver pairs with dev tokens and needs no Google credentials.
func setupBackend(ctx context.Context, cfg *config.Config) (docstore.Store, usecase.IdentityProvider, []option.ClientOption) {
	if cfg.StoreDriver == "memory" {
		if cfg.Environment == "production" {
			logger.Fatal("STORE_DRIVER=memory is not allowed in production")
		}
		logger.Warn("Using the in-memory store, data is lost on exit")
		return docstore.NewMemoryStore(), firebase.NewDevIdentityProvider(), nil
	}

	var opts []option.ClientOption
	switch {
	case cfg.FirebaseCredentialsJSON != "":
		logger.Info("Using Firebase service account from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.FirebaseCredentialsJSON)))
	case cfg.FirebaseCredentialsPath != "":
		if _, err := os.Stat(cfg.FirebaseCredentialsPath); os.IsNotExist(err) {
			logger.Fatal("Service account file does not exist: %s", cfg.FirebaseCredentialsPath)
		}
		logger.Info("Using Firebase service account from file: %s", cfg.FirebaseCredentialsPath)
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsPath))
	default:
		logger.Info("Using application default credentials")
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		logger.Fatal("Failed to create Firestore client: %v", err)
	}

	return docstore.NewFirestoreStore(firestoreClient), firebase.NewAuthClient(authClient), opts
}
