package main

import (
	"context"
	"fmt"

	"github.com/kepacart/backend/config"
	httpDelivery "github.com/kepacart/backend/internal/delivery/http"
	"github.com/kepacart/backend/internal/infrastructure/coupang"
	"github.com/kepacart/backend/internal/infrastructure/logger"
	"github.com/kepacart/backend/internal/infrastructure/registry"
	"github.com/kepacart/backend/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "kepacart",
	Short: "Kepa cart backend: barcode and keyword search over the Coupang marketplace",
	Long: `kepacart runtime modes:

  kepacart              Run the HTTP server (default)
  kepacart serve        Run the HTTP server
  kepacart search <kw>  Run one search and print the result set as JSON
  kepacart sign <url>   Print the Authorization header for a marketplace URL`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "",
		"Log level: debug, info, warn, error (overrides KEPA_LOG_LEVEL)")
}

// app bundles the wired services shared by every command
type app struct {
	cfg          *config.Config
	log          *zap.Logger
	client       *coupang.Client
	search       *usecase.SearchService
	registration *usecase.RegistrationService
	handler      *httpDelivery.Handler
	close        func() error
}

// newApp loads configuration and wires the service graph
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	log := logger.NewForEnvironment(cfg.Server.Environment, level)

	reg, closeRegistry, err := registry.New(ctx, cfg.Registry.Type, cfg.Registry.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open product registry: %w", err)
	}

	client := coupang.NewClient(coupang.ClientConfig{
		AccessKey:       cfg.Coupang.AccessKey,
		SecretKey:       cfg.Coupang.SecretKey,
		BaseURL:         cfg.Coupang.BaseURL,
		APIPath:         cfg.Coupang.APIPath,
		RequestsPerHour: cfg.RateLimit.Upstream,
		Timeout:         cfg.Coupang.Timeout,
	}, log)
	if cfg.Server.Environment == "development" {
		client.SetDebug(true)
	}
	if cfg.Coupang.AccessKey == "" || cfg.Coupang.SecretKey == "" {
		log.Warn("Coupang keys not configured; searches will return empty results")
	}

	search := usecase.NewSearchService(client, reg, usecase.SearchServiceConfig{
		SearchLimit:         cfg.Coupang.SearchLimit,
		Timeout:             cfg.Coupang.Timeout,
		SimilarityThreshold: cfg.Matching.SimilarityThreshold,
		MinResults:          cfg.Matching.MinResults,
		EnableDebugLogging:  cfg.Matching.EnableDebugLogging,
	}, log)
	registration := usecase.NewRegistrationService(reg, nil, log)

	return &app{
		cfg:          cfg,
		log:          log,
		client:       client,
		search:       search,
		registration: registration,
		handler:      httpDelivery.NewHandler(search, registration),
		close: func() error {
			_ = log.Sync()
			return closeRegistry()
		},
	}, nil
}
