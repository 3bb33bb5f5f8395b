// Package main is the entry point for the StoryPress server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"storypress/internal/ai"
	"storypress/internal/amp"
	"storypress/internal/cache"
	"storypress/internal/captions"
	"storypress/internal/config"
	"storypress/internal/database"
	"storypress/internal/drafts"
	"storypress/internal/handlers"
	"storypress/internal/player"
	"storypress/internal/pool"
	"storypress/internal/router"
	"storypress/internal/session"
	"storypress/internal/store"
)

func main() {
	// Local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Structured logger — outputs JSON in production, text in development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey (drafts, session flags, markup cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Initialize data stores.
	storyStore := store.NewStoryStore(db)
	draftStore := drafts.NewStore(valkeyClient)
	markupCache := cache.NewMarkupCache(valkeyClient, cache.DefaultMarkupTTL)

	// Session flags back the once-per-session interstitial throttle.
	sessionFlags := session.NewFlags(valkeyClient)

	// Initialize the AI provider registry with all configured providers.
	aiRegistry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"openai": {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
		"claude": {APIKey: cfg.ClaudeKey, Model: cfg.ClaudeModel, BaseURL: cfg.ClaudeBaseURL},
	})

	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
	)

	rewriter := captions.NewRewriter(aiRegistry)

	// Initialize the player page renderer.
	renderer, err := player.New()
	if err != nil {
		slog.Error("failed to initialize player renderer", "error", err)
		os.Exit(1)
	}

	// Candidate pool webhook client.
	poolClient := pool.New(cfg.CandidateWebhookURL)

	// Create handler groups with their dependencies.
	authorHandlers := handlers.NewAuthor(
		poolClient, draftStore, storyStore, rewriter, markupCache,
		cfg.Publisher, cfg.PublisherLogo, cfg.PublicBaseURL,
	)
	storyHandlers := handlers.NewStory(
		storyStore, renderer, sessionFlags, markupCache,
		amp.Config{AdSlot: cfg.StoryAdSlot, AnalyticsID: cfg.AnalyticsID},
		cfg.InterstitialAdClient,
		!cfg.IsDev(),
	)

	// Set up the Chi router with all middleware and routes.
	r := router.New(authorHandlers, storyHandlers)

	// Create the HTTP server with sensible timeouts.
	// WriteTimeout must accommodate the rewrite endpoint, which waits on
	// LLM responses (typically 10-30s).
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
