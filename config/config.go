package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration. It is built once at startup
// and injected into every component; nothing reads the environment after Load.
type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	// Telegram configuration
	BotToken string `env:"BOT_TOKEN,required"`
	// OwnerID is the only identity allowed to approve groups
	OwnerID int64 `env:"OWNER_ID,required"`
	// MentionTag marks a channel post as a giveaway when present in its text or caption
	MentionTag string `env:"MENTION_TAG" envDefault:"@CommentsPickerBot"`
	// LogoURL, when set, is sent as a photo with the /start welcome message
	LogoURL string `env:"LOGO_URL" envDefault:""`

	// Database configuration
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Server configuration. When PublicURL is empty the bot runs in long
	// polling mode and no webhook is registered.
	PublicURL string `env:"PUBLIC_URL" envDefault:""`
	Port      int    `env:"PORT" envDefault:"3000"`

	// DisplayTimezone is used when rendering pick timestamps to users
	DisplayTimezone string `env:"TIMEZONE" envDefault:"Asia/Yangon"`
}

// Load reads configuration from the environment, with .env support for
// local development. Missing required values are a startup error.
func Load() (*Config, error) {
	// A missing .env file is fine; in production the variables are set directly
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.OwnerID == 0 {
		return nil, fmt.Errorf("OWNER_ID must be a non-zero Telegram user id")
	}

	return cfg, nil
}
