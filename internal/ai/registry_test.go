// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"slices"
	"testing"
)

// mockProvider is a test double for Provider.
type mockProvider struct {
	name  string
	reply string
	err   error
}

func (m *mockProvider) Generate(_ context.Context, _, _ string) (string, error) {
	return m.reply, m.err
}

func (m *mockProvider) Name() string { return m.name }

func TestNewRegistrySkipsKeylessConfigs(t *testing.T) {
	r := NewRegistry("openai", map[string]ProviderConfig{
		"openai": {APIKey: "sk-test"},
		"claude": {}, // no key: skipped
	})

	available := r.Available()
	if !slices.Contains(available, "openai") {
		t.Errorf("openai missing from available: %v", available)
	}
	if slices.Contains(available, "claude") {
		t.Errorf("keyless claude present in available: %v", available)
	}
}

func TestRegistryActive(t *testing.T) {
	r := NewRegistry("claude", map[string]ProviderConfig{
		"openai": {APIKey: "sk-test"},
	})

	// Active points at an unavailable provider.
	if _, err := r.Active(); err == nil {
		t.Error("Active() succeeded for unconfigured provider")
	}
	if _, err := r.Generate(context.Background(), "s", "u"); err == nil {
		t.Error("Generate() succeeded for unconfigured provider")
	}

	if got := r.ActiveName(); got != "claude" {
		t.Errorf("ActiveName() = %q, want claude", got)
	}
}

func TestRegistryRegisterAndGenerate(t *testing.T) {
	r := NewRegistry("mock", nil)
	r.Register("mock", &mockProvider{name: "mock", reply: "hello"})

	got, err := r.Generate(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "hello" {
		t.Errorf("Generate = %q, want %q", got, "hello")
	}
}
