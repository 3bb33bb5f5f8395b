// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Candidate pool webhook (supplies raw image candidates)
	CandidateWebhookURL string

	// Publisher identity stamped into every published story
	Publisher     string
	PublisherLogo string

	// PublicBaseURL, when set, is used to build canonical URLs for
	// published stories (e.g. https://stories.example.com).
	PublicBaseURL string

	// Advertising and analytics. Both ad identifiers are opaque; only
	// presence/absence is consumed. Empty means no ad markup at all.
	StoryAdSlot          string // amp-story-auto-ads slot for the static markup
	InterstitialAdClient string // ad network client for the player interstitial
	AnalyticsID          string // measurement id for amp-analytics

	// AI provider settings for the caption rewrite capability
	AIProvider    string // "openai", "claude"
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	ClaudeKey     string
	ClaudeModel   string
	ClaudeBaseURL string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "storypress"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "storypress"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		CandidateWebhookURL: os.Getenv("CANDIDATE_WEBHOOK_URL"),

		Publisher:     envOrDefault("PUBLISHER_NAME", "StoryPress"),
		PublisherLogo: os.Getenv("PUBLISHER_LOGO_URL"),
		PublicBaseURL: os.Getenv("PUBLIC_BASE_URL"),

		StoryAdSlot:          os.Getenv("STORY_AD_SLOT"),
		InterstitialAdClient: os.Getenv("INTERSTITIAL_AD_CLIENT"),
		AnalyticsID:          os.Getenv("ANALYTICS_ID"),

		AIProvider:    envOrDefault("AI_PROVIDER", "openai"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   os.Getenv("OPENAI_MODEL"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		ClaudeKey:     os.Getenv("CLAUDE_API_KEY"),
		ClaudeModel:   os.Getenv("CLAUDE_MODEL"),
		ClaudeBaseURL: os.Getenv("CLAUDE_BASE_URL"),
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.CandidateWebhookURL == "" {
			return nil, fmt.Errorf("CANDIDATE_WEBHOOK_URL must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
