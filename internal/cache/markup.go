// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// markup.go provides a Valkey-backed cache of compiled static story
// markup. Compilation is pure and deterministic, so a cached document is
// exactly what a fresh compile would produce; the cache only saves the
// database read and the string building. HTTP responses built from it are
// still served with client caching disabled.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// markupKeyPrefix namespaces compiled story markup in Valkey.
	markupKeyPrefix = "story:markup:"

	// DefaultMarkupTTL is how long compiled markup stays cached.
	DefaultMarkupTTL = 5 * time.Minute
)

// MarkupCache stores compiled story markup keyed by slug.
type MarkupCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMarkupCache creates a markup cache backed by the given Valkey client.
func NewMarkupCache(client *redis.Client, ttl time.Duration) *MarkupCache {
	if ttl == 0 {
		ttl = DefaultMarkupTTL
	}
	return &MarkupCache{client: client, ttl: ttl}
}

// Get retrieves cached markup for a slug. Returns false on miss or error.
func (mc *MarkupCache) Get(ctx context.Context, slug string) ([]byte, bool) {
	val, err := mc.client.Get(ctx, markupKeyPrefix+slug).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("markup cache get error", "slug", slug, "error", err)
		return nil, false
	}
	return val, true
}

// Set stores compiled markup for a slug with the configured TTL.
func (mc *MarkupCache) Set(ctx context.Context, slug string, markup []byte) {
	if err := mc.client.Set(ctx, markupKeyPrefix+slug, markup, mc.ttl).Err(); err != nil {
		slog.Warn("markup cache set error", "slug", slug, "error", err)
	}
}

// Invalidate drops the cached markup for a slug. Called after a re-publish
// so the next read compiles the new revision.
func (mc *MarkupCache) Invalidate(ctx context.Context, slug string) {
	if err := mc.client.Del(ctx, markupKeyPrefix+slug).Err(); err != nil {
		slog.Warn("markup cache invalidate error", "slug", slug, "error", err)
	}
}
