package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dnaweav/tradesman-ai-assist/internal/config"
	"github.com/dnaweav/tradesman-ai-assist/internal/pipeline"
	"github.com/dnaweav/tradesman-ai-assist/internal/responder"
	"github.com/dnaweav/tradesman-ai-assist/internal/session"
	"github.com/dnaweav/tradesman-ai-assist/internal/settings"
	"github.com/dnaweav/tradesman-ai-assist/internal/store"
	"github.com/dnaweav/tradesman-ai-assist/pkg/llm"
	"github.com/dnaweav/tradesman-ai-assist/pkg/llm/openai"
)

// app bundles the wired collaborators a command needs.
type app struct {
	store    *store.SQLite
	files    *store.LocalFileStore
	pipeline *pipeline.Pipeline
	settings *settings.Coordinator
}

// buildApp opens the record store and wires the pipeline from config.
func buildApp(cfg *config.Config) (*app, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	logger := slog.Default()

	recordStore, err := store.Open(store.Config{
		Path:   filepath.Join(cfg.DataDir, "assist.db"),
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	files := store.NewLocalFileStore(filepath.Join(cfg.DataDir, "files"))

	policy := session.DefaultRetryPolicy()
	if cfg.Resolve.MaxRetries > 0 {
		policy.MaxRetries = cfg.Resolve.MaxRetries
	}
	if cfg.Resolve.BaseDelayMS > 0 {
		policy.BaseDelay = time.Duration(cfg.Resolve.BaseDelayMS) * time.Millisecond
		policy.RereadPause = policy.BaseDelay
	}
	resolver := session.NewResolver(recordStore, policy, logger)

	rsp, err := buildResponder(cfg)
	if err != nil {
		recordStore.Close()
		return nil, err
	}

	p := pipeline.New(pipeline.Config{
		Store:         recordStore,
		Files:         files,
		Resolver:      resolver,
		Responder:     rsp,
		MaxConcurrent: int64(cfg.MaxConcurrent),
		Logger:        logger,
	})

	return &app{
		store:    recordStore,
		files:    files,
		pipeline: p,
		settings: settings.NewCoordinator(recordStore, recordStore, logger),
	}, nil
}

func buildResponder(cfg *config.Config) (responder.Responder, error) {
	switch cfg.Responder.Provider {
	case "openai":
		provider := openai.New(&llm.Config{
			BaseURL:     cfg.Responder.BaseURL,
			APIKey:      cfg.Responder.APIKey,
			Model:       cfg.Responder.Model,
			MaxTokens:   cfg.Responder.MaxTokens,
			Temperature: cfg.Responder.Temperature,
		})
		return responder.NewLLMResponder(provider, cfg.Responder.Model,
			cfg.Responder.MaxContextTokens, cfg.Responder.OutputReserve)
	case "simulated", "":
		return &responder.Simulated{Delay: 1500 * time.Millisecond}, nil
	}
	return nil, fmt.Errorf("unknown responder provider: %q", cfg.Responder.Provider)
}

func (a *app) Close() {
	a.store.Close()
}
