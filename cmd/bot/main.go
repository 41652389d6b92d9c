package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/faridmamadou/anipHair/internal/agent"
	"github.com/faridmamadou/anipHair/internal/app"
	"github.com/faridmamadou/anipHair/internal/cache"
	"github.com/faridmamadou/anipHair/internal/config"
	"github.com/faridmamadou/anipHair/internal/controller"
	"github.com/faridmamadou/anipHair/internal/engine"
	"github.com/faridmamadou/anipHair/internal/messenger"
	"github.com/faridmamadou/anipHair/internal/notification"
	"github.com/faridmamadou/anipHair/internal/repository"
	"github.com/faridmamadou/anipHair/internal/service"
	"github.com/faridmamadou/anipHair/internal/transcribe"
)

const lastMessageTTL = 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Database is unreachable", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	botInstance, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	messageCache := cache.NewMessageCache(redisClient, lastMessageTTL)

	gemini, err := agent.NewGemini(ctx, cfg.GeminiAPIKey)
	if err != nil {
		logger.Fatal("Failed to create Gemini client", zap.Error(err))
	}
	defer gemini.Close()

	transcriber, err := transcribe.NewGoogleTranscriber(ctx, cfg.GoogleCredentialsFile)
	if err != nil {
		logger.Fatal("Failed to create speech client", zap.Error(err))
	}
	defer transcriber.Close()

	catalogRepo := repository.NewCatalogRepository(pool)
	apptRepo := repository.NewAppointmentRepository(pool)

	tgMessenger := messenger.NewTelegram(botInstance)
	notifier := notification.NewAdminNotifier(tgMessenger, cfg.AdminChatID, logger)
	bookingService := service.NewBookingService(catalogRepo, apptRepo, notifier, logger)

	assistant := agent.NewAgent(gemini, bookingService, catalogRepo, messageCache, logger)
	eng := engine.NewEngine(bookingService, assistant, transcriber, messageCache, logger)

	botController := controller.NewBotController(botInstance, eng, tgMessenger, cfg.AdminChatID, logger)
	botController.RegisterHandlers()

	logger.Info("Starting Anip Hair bot",
		zap.String("environment", cfg.Environment),
		zap.Int64("admin_chat_id", cfg.AdminChatID))

	botController.Start(ctx)

	logger.Info("Bot stopped")
}
