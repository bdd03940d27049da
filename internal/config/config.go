package config

import "github.com/caarlos0/env/v10"

// Config centralizes service configuration.
type Config struct {
	HTTPPort       string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL    string `env:"DATABASE_URL"`
	RAGBaseURL     string `env:"RAG_BASE_URL,required"`
	RAGAPIKey      string `env:"RAG_API_KEY"`
	JWTSecret      string `env:"JWT_SECRET"`
	HistoryBackend string `env:"HISTORY_BACKEND" envDefault:"postgres"`
	RedisAddr      string `env:"REDIS_ADDR"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
