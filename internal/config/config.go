package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config keeps runtime settings for the server.
type Config struct {
	ListenAddr  string `mapstructure:"LISTEN_ADDR"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	LogDir      string `mapstructure:"LOG_DIR"`
	Debug       bool   `mapstructure:"DEBUG"`

	// JWTSecret signs API tokens. Required.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// InternalToken guards /internal routes; empty leaves them open (e.g.
	// behind a private network).
	InternalToken string `mapstructure:"INTERNAL_TOKEN"`

	// Timezone is the IANA zone used for all calendar date arithmetic.
	Timezone string `mapstructure:"TIMEZONE"`
	// GenerateCron is the cron spec for the unattended generation job.
	GenerateCron string `mapstructure:"GENERATE_CRON"`

	// Optional Telegram channel for batch run reports.
	TelegramToken  string `mapstructure:"TELEGRAM_TOKEN"`
	TelegramChatID int64  `mapstructure:"TELEGRAM_CHAT_ID"`
}

// Load reads configuration from environment variables and an optional .env
// file in the given directory, with sane defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "tasknotes.db")
	v.SetDefault("LOG_DIR", "logs")
	v.SetDefault("TIMEZONE", "Local")
	v.SetDefault("GENERATE_CRON", "5 0 * * *") // daily, shortly after midnight

	// Unmarshal only sees keys viper knows about, so every env-only key needs
	// an explicit default for AutomaticEnv to resolve it.
	v.SetDefault("DEBUG", false)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("INTERNAL_TOKEN", "")
	v.SetDefault("TELEGRAM_TOKEN", "")
	v.SetDefault("TELEGRAM_CHAT_ID", 0)

	if err := v.ReadInConfig(); err != nil {
		// The .env file is optional; environment variables alone are fine.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
