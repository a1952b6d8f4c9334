// Package main boots the pet companion service and wires application dependencies.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/easeaico/project-pet/internal/companion"
	"github.com/easeaico/project-pet/internal/config"
	"github.com/easeaico/project-pet/internal/generator"
	"github.com/easeaico/project-pet/internal/handler"
	"github.com/easeaico/project-pet/internal/logger"
	"github.com/easeaico/project-pet/internal/models"
	"github.com/easeaico/project-pet/internal/narrative"
	"github.com/easeaico/project-pet/internal/storage"
	"github.com/easeaico/project-pet/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	logCfg, err := logger.LoadConfig(cfg.LogConfig)
	if err != nil {
		log.Fatalf("failed to load logging config: %v", err)
	}
	logCloser := logger.Init(logCfg)
	defer logCloser.Close()
	slog.Info("configuration loaded",
		"store_mode", cfg.StoreMode,
		"narrative_provider", cfg.NarrativeProvider,
		"narrative_model", cfg.NarrativeModel,
		"decay_interval", cfg.DecayInterval,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceName: "petd",
		Endpoint:    cfg.OTelEndpoint,
		Enabled:     cfg.OTelEnabled,
	})
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	store, err := storage.NewStore(ctx, storage.Options{
		Mode:           cfg.StoreMode,
		DatabaseURL:    cfg.DatabaseURL,
		SQLitePath:     cfg.SQLitePath,
		StartingTokens: cfg.StartingTokens,
		AutoMigrate:    true,
	})
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	narrator, err := newNarrator(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize narrator: %v", err)
	}

	registry := companion.NewRegistry(ctx, store.Pets, store.Wallets, generator.NewEngine(narrator), companion.Options{
		DecayInterval: cfg.DecayInterval,
		DecayRate:     cfg.DecayRate,
		WriteDebounce: cfg.WriteDebounce,
		IdleTTL:       cfg.IdleTTL,
	})
	go registry.RunSweeper(ctx, companion.DefaultSweepInterval)

	mux := http.NewServeMux()
	handler.New(registry, store.Wallets).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", "error", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown incomplete", "error", err)
	}
	// Flushes pending writes for every live pet before the store closes.
	slog.Info("releasing companions", "live", registry.Len())
	if err := registry.Close(shutdownCtx); err != nil {
		slog.Warn("failed to release companions", "error", err)
	}
	slog.Info("shutdown complete")
}

func newNarrator(ctx context.Context, cfg config.Config) (generator.Narrator, error) {
	if cfg.NarrativeProvider == config.ProviderStatic {
		return narrative.Static{}, nil
	}
	llm, err := models.New(ctx, cfg.NarrativeProvider, cfg.NarrativeModel, cfg.APIKey())
	if err != nil {
		return nil, err
	}
	return narrative.NewNarrator(llm, cfg.NarrativeTimeout), nil
}
