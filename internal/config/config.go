package config

import (
	"fmt"
	"time"

	"clash-tracker/internal/constants"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	BaseURL        string        `env:"CLASH_API_BASE_URL" validate:"required,url"`
	DBPath         string        `env:"DB_PATH" validate:"required"`
	LogLevel       string        `env:"LOG_LEVEL" validate:"oneof=trace debug info warn error fatal panic disabled"`
	CacheTTL       time.Duration `env:"CACHE_TTL" validate:"gt=0"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" validate:"gt=0"`
}

// Defaults is the configuration used for every variable left unset.
func Defaults() *Config {
	return &Config{
		BaseURL:        constants.DefaultBaseURL,
		DBPath:         constants.DefaultDBPath,
		LogLevel:       constants.DefaultLogLevel,
		CacheTTL:       constants.FreshnessWindow,
		RequestTimeout: constants.ExternalAPITimeout,
	}
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info().
		Str("base_url", cfg.BaseURL).
		Str("db_path", cfg.DBPath).
		Str("log_level", cfg.LogLevel).
		Dur("cache_ttl", cfg.CacheTTL).
		Dur("request_timeout", cfg.RequestTimeout).
		Msg("configuration loaded")

	return cfg, nil
}

var Module = fx.Provide(Load)
