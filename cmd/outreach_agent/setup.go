package main

import (
	"context"
	"fmt"

	"github.com/jonathan/outreach-pipeline/internal/config"
	"github.com/jonathan/outreach-pipeline/internal/db"
	"github.com/jonathan/outreach-pipeline/internal/generation"
	"github.com/jonathan/outreach-pipeline/internal/llm"
	"github.com/jonathan/outreach-pipeline/internal/observability"
	"github.com/jonathan/outreach-pipeline/internal/pipeline"
	"github.com/jonathan/outreach-pipeline/internal/server"
	"go.uber.org/zap"
)

var (
	_ pipeline.Store   = (*db.DB)(nil)
	_ server.JobReader = (*db.DB)(nil)
)

// loadConfig reads and validates configuration, then installs the global logger
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	zap.ReplaceGlobals(observability.InitLog(cfg.LogLevel))
	return cfg, nil
}

// newAdapter builds the Gemini-backed generation adapter.
// Returns a nil adapter when no API key is configured.
func newAdapter(ctx context.Context, cfg *config.Config) (generation.Adapter, func(), error) {
	if cfg.APIKey == "" {
		return nil, func() {}, nil
	}

	llmConfig := llm.DefaultConfig()
	if cfg.GenerationModel != "" {
		llmConfig = llmConfig.WithAllModels(cfg.GenerationModel)
	}

	client, err := llm.NewClient(ctx, llmConfig, cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return generation.NewLLMAdapter(client), func() { _ = client.Close() }, nil
}

// connectStore opens the database when DATABASE_URL is configured.
// Returns nil, nil otherwise.
func connectStore(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return database, nil
}
