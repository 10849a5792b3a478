package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MikeSquared-Agency/rolodex/internal/api"
	"github.com/MikeSquared-Agency/rolodex/internal/config"
	"github.com/MikeSquared-Agency/rolodex/internal/engine"
	"github.com/MikeSquared-Agency/rolodex/internal/extractor"
	"github.com/MikeSquared-Agency/rolodex/internal/hermes"
	"github.com/MikeSquared-Agency/rolodex/internal/openai"
	"github.com/MikeSquared-Agency/rolodex/internal/session"
	"github.com/MikeSquared-Agency/rolodex/internal/store"
	"github.com/MikeSquared-Agency/rolodex/internal/telegram"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("rolodex starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	// OpenAI client
	if cfg.OpenAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}
	llm := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	slog.Info("openai client ready", "model", cfg.OpenAIModel)

	// Extractor
	ext := extractor.New(llm, slog.Default())

	// NATS/Hermes (optional — rolodex works without the swarm bus)
	var bus *hermes.Client
	if cfg.NatsURL != "" {
		bus, err = hermes.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Warn("NATS unavailable — running without the bus", "error", err)
			bus = nil
		} else {
			defer bus.Close()
			slog.Info("NATS connected", "url", cfg.NatsURL)
		}
	}

	// Session drafts
	sessions := session.New()

	// Telegram channel + engine. The channel is both the inbound driver
	// and the engine's sender.
	if cfg.TelegramToken == "" {
		slog.Error("TELEGRAM_TOKEN is required")
		os.Exit(1)
	}
	channel := telegram.NewChannel(cfg.TelegramToken, slog.Default())

	var pub engine.Publisher
	if bus != nil {
		pub = bus
	}
	eng := engine.New(sessions, ext, channel, db, pub, slog.Default())
	channel.SetHandler(eng)

	if err := channel.Start(ctx); err != nil {
		slog.Error("failed to start telegram channel", "error", err)
		os.Exit(1)
	}
	defer channel.Stop()

	// Remote cancellation from the swarm bus.
	if bus != nil {
		err := bus.Subscribe(hermes.SubjectSessionCancel, func(_ string, data []byte) {
			var req hermes.CancelRequest
			if err := json.Unmarshal(data, &req); err != nil {
				slog.Error("invalid cancel request", "error", err)
				return
			}
			eng.HandleCancel(ctx, req.SessionID)
		})
		if err != nil {
			slog.Error("failed to subscribe to cancel requests", "error", err)
			os.Exit(1)
		}
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, sessions, db)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if bus != nil {
		if err := bus.Publish(hermes.SubjectRegistered, map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      cfg.Port,
		}); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
	}

	slog.Info("rolodex ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("rolodex stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
