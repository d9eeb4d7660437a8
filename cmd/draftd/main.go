// Command draftd serves the email drafting pipeline over HTTP.
//
// Configuration comes from a .env file, an optional YAML file
// (MAILDRAFT_CONFIG, default maildraft.yaml) and environment variables:
//
//	MAILDRAFT_PORT       - Server port (default: 8000)
//	MAILDRAFT_LOG_LEVEL  - debug, info, warn or error (default: info)
//	MAILDRAFT_PROVIDER   - anthropic, openai, google or stub (default: stub)
//	MAILDRAFT_MODEL      - Model override (optional, uses provider default)
//	ANTHROPIC_API_KEY    - Anthropic API key
//	OPENAI_API_KEY       - OpenAI API key
//	GOOGLE_API_KEY       - Google API key
//	DATABASE_URL         - PostgreSQL store (optional, in-memory otherwise)
//	KAFKA_BROKERS        - Comma-separated brokers for run records (optional)
//
// Usage:
//
//	MAILDRAFT_PROVIDER=anthropic go run ./cmd/draftd
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spetersoncode/maildraft/internal/app"
	"github.com/spetersoncode/maildraft/internal/config"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	logger := app.NewLogger(os.Stderr, cfg.Server.LogLevel, cfg.Server.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      a.Handler(version),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // SSE needs no write timeout
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("maildraft server starting",
		"addr", server.Addr,
		"version", version,
		"endpoint", "POST http://localhost:"+cfg.Server.Port+"/api/generate",
	)

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		return
	}

	logger.Info("server stopped")
}
