package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string `mapstructure:"PORT"`
	Env           string `mapstructure:"ENV"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	BotURL        string `mapstructure:"BOT_URL"`
	MaxFileSize   int64  `mapstructure:"MAX_FILE_SIZE"`
	MaxBatchFiles int    `mapstructure:"MAX_BATCH_FILES"`
}

// Load reads configuration from an optional .env file and the environment.
// DATABASE_URL is optional: without it the server keeps reports in memory.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("BOT_URL", "http://127.0.0.1:8000")
	v.SetDefault("MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("MAX_BATCH_FILES", 10)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("BOT_URL")
	v.BindEnv("MAX_FILE_SIZE")
	v.BindEnv("MAX_BATCH_FILES")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.MaxBatchFiles < 1 {
		return nil, fmt.Errorf("MAX_BATCH_FILES must be at least 1, got %d", cfg.MaxBatchFiles)
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}
