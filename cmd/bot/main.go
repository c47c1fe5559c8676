package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/evpulse/pulse-bot/internal/bot"
	"github.com/evpulse/pulse-bot/internal/digest"
	"github.com/evpulse/pulse-bot/internal/directory"
	"github.com/evpulse/pulse-bot/internal/messages"
	"github.com/evpulse/pulse-bot/internal/storage"
	"github.com/evpulse/pulse-bot/internal/tagger"
	"github.com/evpulse/pulse-bot/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		store, err = storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		})
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Initialize the tagging capability
	var tg tagger.Tagger
	if cfg.Tagger.UseGPT {
		tg = tagger.NewGPTTagger(
			cfg.OpenAI.APIKey,
			cfg.OpenAI.Model,
			cfg.OpenAI.MaxTokens,
			cfg.OpenAI.Temperature,
			cfg.Tagger.MaxTags,
			logger,
		)
	} else {
		tg = tagger.NewKeywordTagger(cfg.Tagger.MaxTags)
	}

	// Initialize services
	dir := directory.New(store, logger)
	msgs := messages.NewService(store, tg, logger)
	summarizer := digest.NewOpenAISummarizer(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		cfg.OpenAI.MaxTokens,
		cfg.OpenAI.Temperature,
	)
	composer := digest.NewComposer(dir, msgs, summarizer, cfg.Digest.WindowHours, logger)

	// Initialize bot
	b, err := bot.New(cfg.Slack.BotToken, cfg.Slack.AppToken, dir, msgs, composer, logger)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the bot
	if err := b.Start(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("Bot error", zap.Error(err))
	}
}
