// Package main provides the docchat HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docchat-io/docchat/internal/chat"
	"github.com/docchat-io/docchat/internal/config"
	"github.com/docchat-io/docchat/internal/llm"
	"github.com/docchat-io/docchat/internal/metrics"
	"github.com/docchat-io/docchat/internal/models"
	"github.com/docchat-io/docchat/internal/retriever"
	"github.com/docchat-io/docchat/internal/search"
	"github.com/docchat-io/docchat/internal/server"
	"github.com/docchat-io/docchat/internal/store"
)

// unavailableCompleter stands in when completion credentials are absent;
// the server still starts and /api/chat reports the failure upstream.
type unavailableCompleter struct {
	err error
}

func (c unavailableCompleter) Complete(context.Context, models.Conversation) (string, error) {
	return "", fmt.Errorf("completion service not configured: %w", c.err)
}

func main() {
	configFile := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	// Load configuration
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.LoadFile(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg = config.Load()
	}

	// Initialize logging
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer func() {
		_ = cleanup()
	}()
	slog.SetDefault(logger)

	logger.Info("starting docchat-server", "port", cfg.Port)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Durable tier: probed once at startup. A failed probe disables the
	// tier for the process lifetime.
	var durable store.DurableStore
	if cfg.RedisURL != "" {
		rs, err := store.NewRedisStore(startCtx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, conversations held in memory only", "error", err)
		} else {
			logger.Info("redis connected, conversations will be persistent")
			durable = rs
		}
	} else {
		logger.Info("REDIS_URL not set, using in-memory storage")
	}
	tiered := store.NewTieredStore(durable, logger)
	defer func() {
		_ = tiered.Close()
	}()

	// Completion service.
	var completer chat.Completer
	llmConfigured := false
	model, err := llm.NewModel(startCtx, cfg)
	if err != nil {
		logger.Warn("completion service not configured", "error", err)
		completer = unavailableCompleter{err: err}
	} else {
		logger.Info("completion service ready", "provider", string(cfg.LLMProvider), "model", model.Model())
		completer = model
		llmConfigured = true
	}

	collector := metrics.NewCollector()

	// Retrieval: optional; any setup failure disables it rather than
	// blocking startup.
	var ret *retriever.Retriever
	if cfg.SearchProvider != config.SearchDisabled {
		index, err := search.New(startCtx, cfg, logger)
		if err != nil {
			logger.Warn("search index unavailable, retrieval disabled", "error", err)
		} else if index != nil {
			embedder, err := llm.NewEmbedder(cfg)
			if err != nil {
				logger.Warn("embedder unavailable, retrieval disabled", "error", err)
				_ = index.Close(context.Background())
			} else {
				logger.Info("retrieval enabled", "provider", string(cfg.SearchProvider))
				ret = retriever.New(embedder, index, collector, logger)
				defer func() {
					_ = index.Close(context.Background())
				}()
			}
		}
	}
	if ret == nil {
		ret = retriever.New(nil, nil, collector, logger)
	}

	chatService := chat.NewService(tiered, ret, completer, collector, logger)

	srv := server.New(server.Deps{
		Chat:          chatService,
		Retriever:     ret,
		Store:         tiered,
		Collector:     collector,
		Logger:        logger,
		AuthUsername:  cfg.AuthUsername,
		AuthPassword:  cfg.AuthPassword,
		LLMConfigured: llmConfigured,
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 120 * time.Second, // Long for LLM responses
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("listening", "url", fmt.Sprintf("http://localhost:%s/", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
