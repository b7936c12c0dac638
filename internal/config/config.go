// Package config loads application configuration from a YAML file with
// environment variable overrides. Secrets (API keys, bot tokens) are
// expected from the environment; the file holds everything else.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ducminhle1904/stock-insight/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr       string `yaml:"addr"`
		CORSOrigin string `yaml:"cors_origin"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Providers struct {
		AlphaVantageKey string        `yaml:"alpha_vantage_key"`
		CSVDir          string        `yaml:"csv_dir"`
		BarCacheTTL     time.Duration `yaml:"bar_cache_ttl"`
		QuoteCacheTTL   time.Duration `yaml:"quote_cache_ttl"`
		Bybit           struct {
			Testnet  bool   `yaml:"testnet"`
			Category string `yaml:"category"`
		} `yaml:"bybit"`
	} `yaml:"providers"`
	Advisor struct {
		Model   string        `yaml:"model"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"advisor"`
	Alerts struct {
		Schedule string `yaml:"schedule"`
		Telegram struct {
			BotToken string `yaml:"bot_token"`
			ChatID   string `yaml:"chat_id"`
		} `yaml:"telegram"`
	} `yaml:"alerts"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is fine; env and defaults carry
// a fresh checkout to a working server.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.NewConfigurationError("config", "load",
			fmt.Sprintf("read %s: %v", path, err))
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.NewConfigurationError("config", "load",
				fmt.Sprintf("parse %s: %v", path, err))
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INSIGHT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("INSIGHT_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		cfg.Providers.AlphaVantageKey = v
	}
	if v := os.Getenv("INSIGHT_CSV_DIR"); v != "" {
		cfg.Providers.CSVDir = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Alerts.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Alerts.Telegram.ChatID = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8090"
	}
	if cfg.Server.CORSOrigin == "" {
		cfg.Server.CORSOrigin = "*"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/insight.db"
	}
	if cfg.Providers.BarCacheTTL == 0 {
		cfg.Providers.BarCacheTTL = 5 * time.Minute
	}
	if cfg.Providers.QuoteCacheTTL == 0 {
		cfg.Providers.QuoteCacheTTL = time.Minute
	}
	if cfg.Providers.Bybit.Category == "" {
		cfg.Providers.Bybit.Category = "spot"
	}
	if cfg.Advisor.Timeout == 0 {
		cfg.Advisor.Timeout = 45 * time.Second
	}
	if cfg.Alerts.Schedule == "" {
		cfg.Alerts.Schedule = "0 */15 * * * *"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks the fields every run needs. Provider keys are not
// required here; components that need them degrade at their own level.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.NewConfigurationError("config", "validate", "server.addr is required")
	}
	if c.Database.Path == "" {
		return errors.NewConfigurationError("config", "validate", "database.path is required")
	}
	if c.Providers.BarCacheTTL < 0 {
		return errors.NewConfigurationError("config", "validate", "providers.bar_cache_ttl must not be negative")
	}
	if c.Providers.QuoteCacheTTL < 0 {
		return errors.NewConfigurationError("config", "validate", "providers.quote_cache_ttl must not be negative")
	}
	if c.Alerts.Telegram.BotToken != "" && c.Alerts.Telegram.ChatID == "" {
		return errors.NewConfigurationError("config", "validate", "alerts.telegram.chat_id is required when bot_token is set")
	}
	return nil
}

// TelegramConfigured reports whether alert delivery via Telegram is set up.
func (c *Config) TelegramConfigured() bool {
	return c.Alerts.Telegram.BotToken != "" && c.Alerts.Telegram.ChatID != ""
}
