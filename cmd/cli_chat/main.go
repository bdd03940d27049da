package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"workmate-ai/internal/config"
	"workmate-ai/internal/db"
	"workmate-ai/internal/rag"
	"workmate-ai/internal/repository"
	"workmate-ai/internal/service"
)

// Interactive terminal chat for local testing: sends messages through the
// same ChatService the API uses and can dump the aggregated source panel.
func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	var history repository.HistoryRepository
	if strings.EqualFold(cfg.HistoryBackend, "redis") {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		history = repository.NewRedisHistoryRepository(redisClient)
	} else {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			log.Fatal(err)
		}
		defer pool.Close()
		history = repository.NewPgHistoryRepository(pool)
	}

	ragClient := rag.NewHTTPClient(cfg.RAGBaseURL, cfg.RAGAPIKey, logger)
	chatSvc := service.NewChatService(ragClient, history)

	identity := "cli_test@example.com"
	if len(os.Args) > 1 {
		identity = os.Args[1]
	}

	fmt.Printf("WorkMate AI chat (%s)\n", identity)
	fmt.Println("commands: /sources /clear /exit")

	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)

		switch {
		case line == "":
			continue
		case line == "/exit":
			return
		case line == "/clear":
			if err := chatSvc.ClearHistory(ctx, identity); err != nil {
				fmt.Println("clear failed:", err)
				continue
			}
			fmt.Println("history cleared")
		case line == "/sources":
			sources, err := chatSvc.Sources(ctx, identity)
			if err != nil {
				fmt.Println("sources failed:", err)
				continue
			}
			if len(sources) == 0 {
				fmt.Println("(no sources yet)")
				continue
			}
			for _, src := range sources {
				fmt.Printf("  [%s] %s (%s) x%d\n", src.Icon, src.DisplayName, src.DisplayLabel, src.OccurrenceCount)
			}
		default:
			result, err := chatSvc.Send(ctx, identity, line)
			if errors.Is(err, service.ErrQuotaExceeded) {
				fmt.Println("usage limit reached, remaining:", result.RemainingQuota)
				continue
			}
			if err != nil {
				fmt.Println("send failed:", err)
				continue
			}
			fmt.Println(result.AssistantMessage.Text)
			if result.AssistantMessage.Citation != "" {
				fmt.Println("  source:", result.AssistantMessage.Citation)
			}
		}
	}
}
