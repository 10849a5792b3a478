package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port          int
	TelegramToken string
	OpenAIAPIKey  string
	OpenAIModel   string
	DatabaseURL   string
	NatsURL       string
	NatsToken     string
	LogLevel      string
}

func Load() Config {
	return Config{
		Port:          envInt("ROLODEX_PORT", 8760),
		TelegramToken: envStr("TELEGRAM_TOKEN", ""),
		OpenAIAPIKey:  envStr("OPENAI_API_KEY", ""),
		OpenAIModel:   envStr("ROLODEX_MODEL", "gpt-4o-mini"),
		DatabaseURL:   envStr("DATABASE_URL", ""),
		NatsURL:       envStr("NATS_URL", "nats://hermes:4222"),
		NatsToken:     envStr("NATS_TOKEN", ""),
		LogLevel:      envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
