// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai provides a unified interface to the LLM providers that back
// the per-slide caption rewrite capability. Each provider handles its own
// HTTP communication; the Registry selects the active one by name.
package ai

import (
	"context"
	"fmt"
	"sync"
)

// Provider is implemented by every LLM backend. The rewrite workflow only
// needs plain text-in/text-out generation.
type Provider interface {
	// Generate sends a prompt to the LLM and returns the generated text.
	// systemPrompt sets the model's behaviour; userPrompt is the request.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Name returns the provider identifier (e.g., "openai").
	Name() string
}

// ProviderConfig holds the credentials and settings for a single provider.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Registry manages available providers and selects the active one. It
// supports runtime switching and test injection via Register. All methods
// are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	active    string
}

// NewRegistry creates a registry and initialises a provider for every
// config with a non-empty API key. Configs without keys are skipped.
func NewRegistry(active string, configs map[string]ProviderConfig) *Registry {
	r := &Registry{
		providers: make(map[string]Provider),
		active:    active,
	}

	for name, cfg := range configs {
		if cfg.APIKey == "" {
			continue
		}
		switch name {
		case "openai":
			r.providers[name] = newOpenAI(cfg)
		case "claude":
			r.providers[name] = newClaude(cfg)
		}
	}

	return r
}

// Generate calls the active provider's Generate method.
func (r *Registry) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	p, err := r.Active()
	if err != nil {
		return "", err
	}
	return p.Generate(ctx, systemPrompt, userPrompt)
}

// Active returns the currently active provider.
func (r *Registry) Active() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[r.active]
	if !ok {
		return nil, fmt.Errorf("ai: no provider configured for %q", r.active)
	}
	return p, nil
}

// ActiveName returns the name of the currently active provider.
func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.active
}

// Available returns the names of all providers that have valid API keys.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// Register adds or replaces a provider. Tests use this to inject mocks.
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}
