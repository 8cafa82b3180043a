// mockllm serves chat-completions-style HTTP requests deterministically,
// via static rules, sandboxed scripting, or an interactive human-operator
// queue — it never calls a real model.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mockllm/mockllm/internal/config"
	"github.com/mockllm/mockllm/internal/httpapi"
	"github.com/mockllm/mockllm/internal/interactive"
	"github.com/mockllm/mockllm/internal/reload"
	"github.com/mockllm/mockllm/internal/telemetry"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load()

	shutdownTelemetry, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}

	log.Info().Str("config_dir", cfg.ConfigDir).Msg("mockllm starting")

	store, ctrl, err := reload.Bootstrap(cfg.ConfigDir, cfg.ReloadDebounce, log.Logger)
	if err != nil {
		log.Error().Err(err).Msg("startup config validation failed")
		os.Exit(1)
	}

	broker := interactive.NewBroker()
	srv := httpapi.New(store, broker, ctrl, cfg.ConfigDir, log.Logger)

	ctx, cancelWatch := context.WithCancel(context.Background())
	if cfg.WatchConfig {
		go func() {
			if err := ctrl.Watch(ctx); err != nil {
				log.Warn().Err(err).Msg("config watch stopped")
			}
		}()
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      srv.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // streaming responses must not be cut off by a fixed write deadline
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("shutting down gracefully")
		cancelWatch()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		_ = shutdownTelemetry(shutdownCtx)
	}()

	log.Info().Int("port", cfg.Port).Msg("mockllm ready")

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
}
