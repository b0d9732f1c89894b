package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken     string        `envconfig:"BOT_TOKEN" required:"true"`
	WebhookURL   string        `envconfig:"WEBHOOK_URL" required:"true"` // externally reachable base URL, no trailing slash
	ChannelID    string        `envconfig:"CHANNEL_ID" required:"true"`  // @channelusername or -1001234567890
	Port         string        `envconfig:"PORT" default:"10000"`
	DBPath       string        `envconfig:"DB_PATH" default:"./data/bot.db"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	TickInterval time.Duration `envconfig:"TICK_INTERVAL" default:"30s"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	cfg.WebhookURL = strings.TrimRight(cfg.WebhookURL, "/")
	return cfg, nil
}
