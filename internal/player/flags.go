// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package player

import (
	"context"
	"sync"
)

// SessionFlags is the session-scoped key-value capability behind the
// "one interstitial per story per session" throttle. It is an injected
// dependency rather than ambient browser/global state, so the throttle is
// testable without a real session backend.
type SessionFlags interface {
	// Seen reports whether the interstitial was already shown for this
	// story in this session.
	Seen(ctx context.Context, sessionID, slug string) (bool, error)
	// MarkSeen records that the interstitial was shown. Dismissal never
	// clears the flag, so the overlay cannot re-arm within a session.
	MarkSeen(ctx context.Context, sessionID, slug string) error
}

// MemoryFlags is an in-process SessionFlags, used by tests and by
// deployments running without Valkey.
type MemoryFlags struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewMemoryFlags creates an empty in-memory flag set.
func NewMemoryFlags() *MemoryFlags {
	return &MemoryFlags{seen: make(map[string]bool)}
}

func (m *MemoryFlags) Seen(_ context.Context, sessionID, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[sessionID+":"+slug], nil
}

func (m *MemoryFlags) MarkSeen(_ context.Context, sessionID, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[sessionID+":"+slug] = true
	return nil
}
