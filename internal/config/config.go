package config

import (
	"fmt"
	"strings"

	"github.com/Netflix/go-env"
)

// Storage backends.
const (
	StoreBackendPostgres = "postgres"
	StoreBackendRedis    = "redis"
)

// Relay transports.
const (
	RelayTransportHTTP   = "http"
	RelayTransportAMQP   = "amqp"
	RelayTransportMemory = "memory"
)

type Config struct {
	DatabaseDSN       string `env:"DATABASE_DSN"`
	RedisURL          string `env:"REDIS_URL,required=true"`
	RabbitMQURL       string `env:"RABBITMQ_URL"`
	StoreBackend      string `env:"STORE_BACKEND,default=postgres"`
	RelayTransport    string `env:"RELAY_TRANSPORT,default=http"`
	SiteURL           string `env:"SITE_URL,default=http://localhost:8080"`
	ChatAPIURL        string `env:"CHAT_API_URL,required=true"`
	ChatAPIToken      string `env:"CHAT_API_TOKEN"`
	BotUserID         string `env:"BOT_USER_ID,default=slowmode.bot"`
	SlowModeDuration  int    `env:"SLOW_MODE_DURATION,default=60"`
	RelaySecret       string `env:"RELAY_SECRET"`
	RelayBuffer       int    `env:"RELAY_BUFFER,default=256"`
	WorkerConcurrency int    `env:"WORKER_CONCURRENCY,default=4"`
	APIPort           int    `env:"API_PORT,default=8080"`
	LogLevel          string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.StoreBackend = normalizeChoice(cfg.StoreBackend, StoreBackendPostgres)
	cfg.RelayTransport = normalizeChoice(cfg.RelayTransport, RelayTransportHTTP)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings whose requirement depends on other settings.
func (c *Config) Validate() error {
	// Set-but-empty variables pass the required tag.
	if strings.TrimSpace(c.RedisURL) == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if strings.TrimSpace(c.ChatAPIURL) == "" {
		return fmt.Errorf("CHAT_API_URL is required")
	}

	switch c.StoreBackend {
	case StoreBackendPostgres:
		if strings.TrimSpace(c.DatabaseDSN) == "" {
			return fmt.Errorf("DATABASE_DSN is required when STORE_BACKEND=%s", StoreBackendPostgres)
		}
	case StoreBackendRedis:
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.RelayTransport {
	case RelayTransportAMQP:
		if strings.TrimSpace(c.RabbitMQURL) == "" {
			return fmt.Errorf("RABBITMQ_URL is required when RELAY_TRANSPORT=%s", RelayTransportAMQP)
		}
	case RelayTransportHTTP, RelayTransportMemory:
	default:
		return fmt.Errorf("unsupported RELAY_TRANSPORT %q", c.RelayTransport)
	}

	if c.SlowModeDuration <= 0 {
		return fmt.Errorf("SLOW_MODE_DURATION must be positive, got %d", c.SlowModeDuration)
	}
	return nil
}

func normalizeChoice(value string, fallback string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return fallback
	}
	return normalized
}
