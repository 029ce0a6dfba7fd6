package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Database struct {
		SQLitePath  string `yaml:"sqlite_path"`
		PostgresDSN string `yaml:"postgres_dsn"`
	} `yaml:"database"`
	Schedule struct {
		RoundCron string `yaml:"round_cron" validate:"required"`
	} `yaml:"schedule"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Notify struct {
		TelegramBotToken string `yaml:"telegram_bot_token"`
		TelegramChatID   string `yaml:"telegram_chat_id" validate:"required_with=TelegramBotToken"`
		Proxy            string `yaml:"proxy"`
	} `yaml:"notify"`
	Game GameConfig `yaml:"game"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SITESIM_SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SITESIM_POSTGRES_DSN"); v != "" {
		cfg.Database.PostgresDSN = v
	}
	if v := os.Getenv("SITESIM_ROUND_CRON"); v != "" {
		cfg.Schedule.RoundCron = v
	}
	if v := os.Getenv("SITESIM_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Notify.TelegramBotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Notify.TelegramChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" && cfg.Notify.Proxy == "" {
		cfg.Notify.Proxy = v
	}

	// Defaults
	if cfg.Schedule.RoundCron == "" {
		cfg.Schedule.RoundCron = "*/10 * * * * *"
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9090"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/sitesim.db"
	}
	if cfg.Game.Bid.DefaultDuration == 0 {
		cfg.Game.Bid.DefaultDuration = cfg.Game.ProjectDuration
	}
	if cfg.Game.Finances.ExpressMultiplier == 0 {
		cfg.Game.Finances.ExpressMultiplier = 1
	}

	return cfg, nil
}

// Validate checks struct constraints and the consistency of the game scenario.
func (c *Config) Validate() error {
	if err := NewValidator().Validate(c); err != nil {
		return err
	}
	if errs := c.Game.check(); len(errs) > 0 {
		return errs
	}
	return nil
}
