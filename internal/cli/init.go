// Package cli consolidates the bootstrap steps shared by the bilancio
// binaries: env loading, logging, configuration, and storage setup.
package cli

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"bilancio/internal/backend"
	"bilancio/internal/config"
	"bilancio/internal/log"
	"bilancio/internal/storage"
)

// Setup loads the .env file, builds the component logger, and validates
// configuration. It exits the process when the configuration is unusable.
func Setup(component string) (*config.Config, *log.Logger) {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{Level: cfg.SlogLevel(), Component: component})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	return cfg, logger
}

// OpenStore builds the configured storage backend. It exits the process on
// failure; the returned cleanup closes the store and must be deferred by
// the caller.
func OpenStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (storage.Store, backend.CleanupFunc) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	result, err := backend.NewFactory(logger.Logger).Create(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize storage backend", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	return result.Store, result.Cleanup
}
