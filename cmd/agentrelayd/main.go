// AgentRelay - coordinated multi-agent assistant server
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hupe1980/agentrelay"
	"github.com/hupe1980/agentrelay/calendar"
	calendarsqlite "github.com/hupe1980/agentrelay/calendar/sqlite"
	"github.com/hupe1980/agentrelay/config"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/model/anthropic"
	"github.com/hupe1980/agentrelay/model/openai"
	"github.com/hupe1980/agentrelay/search"
	"github.com/hupe1980/agentrelay/search/perplexity"
	"github.com/hupe1980/agentrelay/server"
	"github.com/hupe1980/agentrelay/toolkit"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	logger.Info("Starting server", "port", cfg.Port, "provider", cfg.ModelProvider)

	generator := newModel(cfg)

	var events calendar.Store
	if cfg.CalendarDBPath != "" {
		store, err := calendarsqlite.New(cfg.CalendarDBPath)
		if err != nil {
			logger.Error("Failed to open calendar database", "path", cfg.CalendarDBPath, "error", err)
			os.Exit(1)
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				logger.Error("Failed to close calendar database", "error", closeErr)
			}
		}()
		if err := store.Ping(context.Background()); err != nil {
			logger.Error("Calendar database health check failed", "error", err)
			os.Exit(1)
		}
		logger.Info("Calendar database connected", "path", cfg.CalendarDBPath)
		events = store
	} else {
		logger.Info("Using in-memory calendar store")
		events = calendar.NewInMemoryStore()
	}

	var searcher search.Searcher
	if cfg.PerplexityAPIKey != "" {
		searcher = perplexity.New(cfg.PerplexityAPIKey)
		logger.Info("Web search enabled")
	} else {
		logger.Info("Web search disabled (PERPLEXITY_API_KEY not set)")
	}

	tools, err := toolkit.New(func(o *toolkit.Options) {
		o.WorkDir = cfg.WorkspaceDir
		o.JournalPath = cfg.JournalPath
		o.Timeout = cfg.ExecTimeout
		o.Logger = logger
	})
	if err != nil {
		logger.Error("Failed to initialize toolkit", "error", err)
		os.Exit(1)
	}

	relay := agentrelay.New(generator, func(o *agentrelay.Options) {
		o.CalendarStore = events
		o.Searcher = searcher
		o.Toolkit = tools
		o.Logger = logger
	})

	handler := server.NewHandler(relay.Engine(), func(o *server.Options) {
		o.Logger = logger
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped successfully")
}

// newLogger builds the structured logger, teeing to a size-rotated file when
// one is configured.
func newLogger(cfg config.LogConfig) logging.Logger {
	var out io.Writer = os.Stdout
	if cfg.FilePath != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxAge:     cfg.MaxAge,
			MaxBackups: cfg.Backups,
			Compress:   true,
		})
	}

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return logging.New(func(o *logging.Options) {
		o.Level = level
		o.Format = cfg.Format
		o.Output = out
	})
}

// newModel selects the text-generation backend from configuration. API keys
// are read from the environment by the provider SDKs themselves.
func newModel(cfg *config.Config) model.Model {
	if cfg.ModelProvider == "openai" {
		return openai.NewModel(func(o *openai.Options) {
			o.Model = cfg.OpenAIModel
		})
	}
	return anthropic.NewModel(func(o *anthropic.Options) {
		o.Model = anthropicsdk.Model(cfg.AnthropicModel)
	})
}
