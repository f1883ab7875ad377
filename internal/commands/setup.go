package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/medbridge/medbridge/internal/oracle"
	"github.com/medbridge/medbridge/internal/store"
)

// SetupLogger creates a logger writing to stderr at the configured level
func SetupLogger(config CommonConfig) (*log.Logger, error) {
	logger := log.New(os.Stderr)
	level, err := log.ParseLevel(config.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)
	return logger, nil
}

// SetupStore opens the platform database in the configured data directory
func SetupStore(config CommonConfig, logger *log.Logger) (*store.Store, error) {
	st, err := store.New(config.DataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	return st, nil
}

// SetupOracle creates a gateway client from the configured credentials
func SetupOracle(config GatewayConfig, logger *log.Logger) (oracle.Client, error) {
	oracleConfig := oracle.NewConfig().
		WithAPIKey(config.OpenRouterKey).
		WithModel(config.OpenRouterModel).
		WithLogger(logger)
	if config.OpenRouterURL != "" {
		oracleConfig = oracleConfig.WithBaseURL(config.OpenRouterURL)
	}

	client, err := oracle.NewGatewayClient(oracleConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway client: %w", err)
	}
	return client, nil
}
