package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken         string
	DBDSN                 string
	GeminiAPIKey          string
	RedisAddr             string
	AdminChatID           int64 // 0 = answer everyone
	GoogleCredentialsFile string
	MigrationsPath        string
	Environment           string
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables win anyway.
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		TelegramToken:         os.Getenv("TELEGRAM_TOKEN"),
		DBDSN:                 os.Getenv("DB_DSN"),
		GeminiAPIKey:          os.Getenv("GEMINI_API_KEY"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		GoogleCredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		MigrationsPath:        os.Getenv("MIGRATIONS_PATH"),
		Environment:           os.Getenv("ENV"),
	}

	if raw := os.Getenv("ADMIN_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_CHAT_ID must be a chat id: %w", err)
		}
		cfg.AdminChatID = id
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required but not set")
	}

	return cfg, nil
}
