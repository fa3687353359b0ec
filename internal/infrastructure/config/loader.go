package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Config holds the plugin process settings. Twitch credentials are not here:
// they live in the host's global settings and are edited in the inspector.
type Config struct {
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
	LogFile   string `env:"LOG_FILE" default:"logs/plugin.log"`

	DatabasePath string `env:"DATABASE_PATH" default:"data/twitchdeck.db"`
	MetricsAddr  string `env:"METRICS_ADDR"`

	// TwitchClientID se usa cuando el inspector deja el client id vacío.
	TwitchClientID string `env:"TWITCH_CLIENT_ID"`
	HelixBaseURL   string `env:"HELIX_BASE_URL" default:"https://api.twitch.tv/helix"`

	ShoutoutAnnounce bool `env:"SHOUTOUT_ANNOUNCE" default:"true"`
	// ShoutoutMessage admite {name} y {viewers}.
	ShoutoutMessage string `env:"SHOUTOUT_MESSAGE" default:"Go check out @{name}, they just raided with {viewers} viewers!"`

	TokenCheckInterval time.Duration `env:"TOKEN_CHECK_INTERVAL" default:"1h"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("config: no .env file, using environment")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: LOG_LEVEL must be debug, info, warn or error, got %q", cfg.LogLevel)
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config: LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}
	if cfg.TokenCheckInterval < time.Minute {
		return fmt.Errorf("config: TOKEN_CHECK_INTERVAL must be at least 1m, got %s", cfg.TokenCheckInterval)
	}
	if cfg.ShoutoutAnnounce && !strings.Contains(cfg.ShoutoutMessage, "{name}") {
		return fmt.Errorf("config: SHOUTOUT_MESSAGE must contain {name}, got %q", cfg.ShoutoutMessage)
	}
	return nil
}

// AnnounceTemplate returns the chat template, or "" when announcements are off.
func (c *Config) AnnounceTemplate() string {
	if !c.ShoutoutAnnounce {
		return ""
	}
	return c.ShoutoutMessage
}
