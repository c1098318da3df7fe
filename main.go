package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dosewise/dosewise-bot/internal/bot"
	"github.com/dosewise/dosewise-bot/internal/bot/state"
	"github.com/dosewise/dosewise-bot/internal/config"
	"github.com/dosewise/dosewise-bot/internal/database"
	"github.com/dosewise/dosewise-bot/internal/logger"
	"github.com/dosewise/dosewise-bot/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warnf(".env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		logger.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.Info("Starting DoseWise bot")

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Info("Database connection established and migrations completed")

	userService := services.NewUserService(db)
	substanceService := services.NewSubstanceService(db)
	doseService := services.NewDoseService(db)

	var stateManager state.StateManager
	if cfg.Redis.Enabled() {
		redisManager, err := state.NewRedisManager(cfg.Redis.Host, cfg.Redis.Port)
		if err != nil {
			logger.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisManager.Close()
		stateManager = redisManager
		logger.Info("Using Redis conversation state")
	} else {
		stateManager = state.NewManager()
		logger.Info("Using in-memory conversation state")
	}

	telegramBot, err := bot.NewBot(cfg.TelegramToken, userService, substanceService, doseService, stateManager)
	if err != nil {
		logger.Fatalf("Failed to create bot: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := telegramBot.Start(ctx); err != nil && ctx.Err() == nil {
		logger.Errorf("Bot stopped with error: %v", err)
		os.Exit(1)
	}
	logger.Info("Bot stopped")
}
