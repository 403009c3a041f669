package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"taskcanvas/config"
	"taskcanvas/handlers"
	"taskcanvas/logging"
	"taskcanvas/middleware"
	"taskcanvas/repositories"
	"taskcanvas/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: %v", err)
	}
	logging.InitLogger(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel})
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting task board server...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logging.Logger.Errorf("Event ID: DB_DISCONNECT_FAILED, Description: %v", err)
		}
	}()
	if err := mongoClient.Ping(connectCtx, readpref.Primary()); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB database %s", cfg.MongoDBName)

	db := mongoClient.Database(cfg.MongoDBName)
	taskRepo := repositories.NewTaskRepository(db)
	userRepo := repositories.NewUserRepository(db)
	boardRepo := repositories.NewBoardRepository(db)
	if err := taskRepo.EnsureIndexes(connectCtx); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
	}
	if err := userRepo.EnsureIndexes(connectCtx); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
	}

	revocations := newRevocationStore(connectCtx, cfg)

	var blackList services.BlackList
	if cfg.BlackListFile != "" {
		if blackList, err = services.LoadBlackList(cfg.BlackListFile); err != nil {
			logging.Logger.Fatalf("Event ID: BLACKLIST_LOAD_FAILED, Description: Could not read %s: %v", cfg.BlackListFile, err)
		}
		logging.Logger.Infof("Event ID: BLACKLIST_LOADED, Description: %d blacklisted passwords loaded", len(blackList))
	}

	boardService := services.NewBoardService(boardRepo)
	router := handlers.NewRouter(handlers.Dependencies{
		Tasks:  services.NewTaskService(taskRepo, boardService),
		Boards: boardService,
		Auth:   services.NewAuthService(userRepo, services.NewTokenService(cfg.JWTSecret, cfg.JWTTTL), revocations, blackList),
		Health: func(ctx context.Context) error {
			return mongoClient.Ping(ctx, readpref.Primary())
		},
	})

	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillahandlers.AllowedOrigins(cfg.AllowedOrigins),
	)
	logging.Logger.Infof("Event ID: CORS_CONFIGURED, Description: Allowed origins: %v", cfg.AllowedOrigins)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           cors(middleware.Timeout(cfg.RequestTimeout)(router)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	logging.Logger.Info("Event ID: SERVER_SHUTDOWN, Description: Shutting down...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Errorf("Event ID: SERVER_SHUTDOWN_FAILED, Description: %v", err)
	}
}

// newRevocationStore uses Redis when configured and reachable, otherwise a
// process-local store.
func newRevocationStore(ctx context.Context, cfg *config.Config) services.RevocationStore {
	if cfg.RedisAddr == "" {
		logging.Logger.Warn("Event ID: REDIS_DISABLED, Description: REDIS_ADDR not set; token revocation is process-local")
		return services.NewMemoryRevocations()
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err := client.Ping(ctx).Err(); err != nil {
		logging.Logger.Warnf("Event ID: REDIS_UNAVAILABLE, Description: Redis at %s unreachable (%v); token revocation is process-local", cfg.RedisAddr, err)
		_ = client.Close()
		return services.NewMemoryRevocations()
	}
	logging.Logger.Infof("Event ID: REDIS_CONNECTED, Description: Connected to Redis at %s", cfg.RedisAddr)
	return services.NewRedisRevocations(client)
}
