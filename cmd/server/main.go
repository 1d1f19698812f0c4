package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parts-assistant/internal/di"
	"parts-assistant/internal/infrastructure/env"
)

func main() {
	envService := env.NewEnvService()

	cfg := di.Config{LogLevel: envService.GetWithDefault("LOG_LEVEL", "info")}
	var err error
	if cfg.OpenRouterAPIKey, err = envService.Require("OPENROUTER_API_KEY"); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if cfg.DetrackAPIKey, err = envService.Require("DETRACK_API_KEY"); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if cfg.SalesDBDSN, err = envService.Require("SALES_DB_DSN"); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if cfg.AppDBDSN, err = envService.Require("APP_DB_DSN"); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if cfg.JWTSecret, err = envService.Require("JWT_SECRET"); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	cfg.OpenRouterModel = envService.GetWithDefault("OPENROUTER_MODEL_NAME", "openai/gpt-4o-mini")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	container, err := di.NewContainer(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("Initialization error: %v", err)
	}
	defer container.Close()

	addr := ":" + envService.GetWithDefault("PORT", "8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           container.Server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		container.Logger.Info("Server started", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			container.Logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		container.Logger.Info("Shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			container.Logger.Error("Shutdown error", "error", err)
		}
	}
}
