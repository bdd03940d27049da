package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"workmate-ai/internal/config"
	"workmate-ai/internal/db"
	apihttp "workmate-ai/internal/http"
	"workmate-ai/internal/rag"
	"workmate-ai/internal/repository"
	"workmate-ai/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var history repository.HistoryRepository
	switch strings.ToLower(cfg.HistoryBackend) {
	case "redis":
		if cfg.RedisAddr == "" {
			logger.Fatal("redis history backend selected but REDIS_ADDR not set")
		}
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		}
		cancel()
		history = repository.NewRedisHistoryRepository(redisClient)
	default:
		if cfg.DatabaseURL == "" {
			logger.Fatal("postgres history backend selected but DATABASE_URL not set")
		}
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		history = repository.NewPgHistoryRepository(pool)
	}

	ragClient := rag.NewHTTPClient(cfg.RAGBaseURL, cfg.RAGAPIKey, logger)
	chatSvc := service.NewChatService(ragClient, history)
	chatHandler := apihttp.NewChatHandler(logger, chatSvc)
	router := apihttp.NewRouter(logger, cfg.JWTSecret, chatHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("history_backend", cfg.HistoryBackend),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
