package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/terra-clan/intern-engine/internal/api"
	"github.com/terra-clan/intern-engine/internal/auth"
	"github.com/terra-clan/intern-engine/internal/chat"
	"github.com/terra-clan/intern-engine/internal/cleanup"
	"github.com/terra-clan/intern-engine/internal/config"
	"github.com/terra-clan/intern-engine/internal/engine"
	"github.com/terra-clan/intern-engine/internal/llm"
	"github.com/terra-clan/intern-engine/internal/prompts"
	"github.com/terra-clan/intern-engine/internal/storage"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting intern-engine",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Initialize database repository
	repo, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: int32(cfg.Database.MaxOpenConns),
		MaxIdleConns: int32(cfg.Database.MaxIdleConns),
	})
	if err != nil {
		slog.Error("failed to create database repository", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected successfully")

	// Run database migrations
	slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
	if err := repo.Migrate(initCtx, cfg.Database.MigrationsDir); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize chat history store
	history, err := chat.NewHistory(initCtx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Error("failed to connect to chat store", "error", err)
		os.Exit(1)
	}

	// Load domain profiles
	library := prompts.NewLibrary()
	if err := library.LoadFromDir(cfg.Profiles.Dir); err != nil {
		slog.Warn("failed to load profiles from dir", "dir", cfg.Profiles.Dir, "error", err)
	}

	// Model provider client
	llmClient := llm.NewHTTPClient(llm.Config{
		APIKey:  cfg.AI.APIKey,
		ModelID: cfg.AI.ModelID,
		BaseURL: cfg.AI.BaseURL,
		Timeout: cfg.AI.Timeout,
	})

	// Core components
	eng := engine.New(repo, llmClient, library)
	mentor := chat.NewMentor(history, llmClient)
	authManager := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Initialize cleanup worker for stale chat sessions
	cleaner := cleanup.NewCleaner(history, cfg.Cleanup.Interval, cfg.Cleanup.Retention)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start cleanup worker
	cleaner.Start(ctx)

	// Setup HTTP server
	server := api.NewServer(cfg.Server, eng, mentor, history, repo, authManager)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // evaluation calls can run long
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if err := history.Close(); err != nil {
		slog.Error("chat store close error", "error", err)
	}

	if err := repo.Close(); err != nil {
		slog.Error("repository close error", "error", err)
	}

	slog.Info("intern-engine stopped")
}
