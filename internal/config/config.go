package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	BotToken        string  `envconfig:"BOT_TOKEN"        required:"true"`
	AdminIDs        []int64 `envconfig:"ADMIN_IDS"        required:"true"`
	ChannelUsername string  `envconfig:"CHANNEL_USERNAME" default:"@jumarket"`
	DBPath          string  `envconfig:"DB_PATH"          default:"marketbot.db"`
	Port            int     `envconfig:"PORT"             default:"8080"`
	SendDelayMS     int     `envconfig:"SEND_DELAY_MS"    default:"300"`
}

// Load reads configuration from the environment, consulting a .env file if
// one exists. It fails when required variables are missing.
func Load() (*Config, error) {
	// Errors are ignored since the file may not exist
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	// envconfig's required tag does not reject set-but-empty variables
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN must not be empty")
	}
	if len(cfg.AdminIDs) == 0 {
		return nil, fmt.Errorf("ADMIN_IDS must contain at least one id")
	}
	return &cfg, nil
}

// SendDelay returns the delay applied between bulk outbound sends.
func (c *Config) SendDelay() time.Duration {
	return time.Duration(c.SendDelayMS) * time.Millisecond
}

// AdminSet builds the static moderation allowlist as a set.
func (c *Config) AdminSet() map[int64]struct{} {
	set := make(map[int64]struct{}, len(c.AdminIDs))
	for _, id := range c.AdminIDs {
		set[id] = struct{}{}
	}
	return set
}
