package main

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/improve"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/storage"
)

// loadConfig layers the config file over the environment over the package defaults.
// Commands apply their own flags on top.
func loadConfig() (config.Config, error) {
	env, err := config.FromEnv()
	if err != nil {
		return config.Config{}, err
	}

	var fileCfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		fileCfg = *loaded
	}

	cfg := fileCfg.MergeWithDefaults(env)
	if verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newImprover picks the remote endpoint when configured, otherwise Gemini.
// The returned close function is never nil.
func newImprover(ctx context.Context, cfg config.Config) (improve.Service, func(), error) {
	switch {
	case cfg.ImproveEndpoint != "":
		return improve.NewRemoteImprover(cfg.ImproveEndpoint), func() {}, nil
	case cfg.APIKey != "":
		client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
		if err != nil {
			return nil, func() {}, fmt.Errorf("failed to create LLM client: %w", err)
		}
		return improve.NewLLMImprover(client), func() { _ = client.Close() }, nil
	default:
		return nil, func() {}, fmt.Errorf("no improvement service configured: set IMPROVE_ENDPOINT or GEMINI_API_KEY")
	}
}

func openStore(cfg config.Config) (*storage.FileStore, error) {
	store, err := storage.NewFileStore(cfg.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage directory: %w", err)
	}
	return store, nil
}
