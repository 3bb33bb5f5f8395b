// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session provides anonymous viewer sessions for the story player
// and the Valkey-backed session flags behind the interstitial throttle.
// A viewer session is just a random cookie value; nothing about the viewer
// is stored unless a flag is set.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the anonymous viewer session cookie.
	CookieName = "sp_viewer"

	// DefaultTTL bounds a browsing session: flags set within it expire
	// together with the session.
	DefaultTTL = 24 * time.Hour

	// flagPrefix namespaces interstitial flags in Valkey.
	flagPrefix = "interstitial:"

	// idLength is the byte length of the random viewer ID.
	idLength = 16
)

// EnsureViewer returns the request's viewer session ID, creating the
// cookie when absent. secure marks the cookie HTTPS-only.
func EnsureViewer(w http.ResponseWriter, r *http.Request, secure bool) (string, error) {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("viewer session: %w", err)
	}
	id := hex.EncodeToString(b)

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(DefaultTTL.Seconds()),
	})
	return id, nil
}

// Flags is the Valkey-backed implementation of player.SessionFlags.
type Flags struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFlags creates a flag store backed by the given Valkey client.
func NewFlags(client *redis.Client) *Flags {
	return &Flags{client: client, ttl: DefaultTTL}
}

// Seen reports whether the interstitial flag is set for this session+story.
func (f *Flags) Seen(ctx context.Context, sessionID, slug string) (bool, error) {
	n, err := f.client.Exists(ctx, flagKey(sessionID, slug)).Result()
	if err != nil {
		return false, fmt.Errorf("session flag get: %w", err)
	}
	return n > 0, nil
}

// MarkSeen sets the flag with the session TTL. It is never cleared within
// a session, so the interstitial cannot re-arm.
func (f *Flags) MarkSeen(ctx context.Context, sessionID, slug string) error {
	if err := f.client.Set(ctx, flagKey(sessionID, slug), "1", f.ttl).Err(); err != nil {
		return fmt.Errorf("session flag set: %w", err)
	}
	return nil
}

func flagKey(sessionID, slug string) string {
	return flagPrefix + sessionID + ":" + slug
}
