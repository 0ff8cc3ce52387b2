package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fastprodman/casino/internal/config"
	"github.com/fastprodman/casino/pkg/envconf"
)

const serviceName = "casino-api"

type apiConfig struct {
	Port            uint16        `env:"APP_PORT" default:"8080"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" default:"INFO"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" default:"10s"`
	AllowedOrigins  []string      `env:"APP_ALLOWED_ORIGINS" default:"*"`
	Postgres        config.PostgresConfig
}

func readConfig() (*apiConfig, error) {
	cfg := new(apiConfig)

	err := config.Preload(envFile())
	if err != nil {
		return nil, fmt.Errorf("preload env file: %w", err)
	}

	err = envconf.Load(cfg)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	return cfg, nil
}

// envFile is read before the rest of the config since it decides where the
// rest may come from.
func envFile() string {
	path := os.Getenv("APP_ENV_FILE")
	if path == "" {
		return ".env"
	}

	return path
}
