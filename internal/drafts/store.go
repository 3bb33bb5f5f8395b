// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package drafts persists in-progress story authoring state in Valkey.
// A draft is the server-side counterpart of one author's selection
// workflow: candidates, selection state, and captions, stored as JSON with
// an automatic TTL so abandoned workflows expire on their own.
package drafts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"storypress/internal/models"
	"storypress/internal/selection"
)

const (
	// keyPrefix namespaces draft keys in Valkey.
	keyPrefix = "draft:"

	// DefaultTTL is how long an untouched draft survives.
	DefaultTTL = 24 * time.Hour
)

// Draft is the full authoring state for one story in progress. Mutations
// go through the selection transitions and caption edits in the handlers;
// the store only loads and saves.
type Draft struct {
	ID         uuid.UUID               `json:"id"`
	Topic      string                  `json:"topic"`
	Title      string                  `json:"title"`
	Candidates []models.ImageCandidate `json:"candidates"`
	Selection  selection.State         `json:"selection"`
	Captions   []models.SlideCaption   `json:"captions"`
	AIPrompts  string                  `json:"ai_prompts,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
}

// Candidate returns the candidate with the given id, or nil.
func (d *Draft) Candidate(id string) *models.ImageCandidate {
	for i := range d.Candidates {
		if d.Candidates[i].ID == id {
			return &d.Candidates[i]
		}
	}
	return nil
}

// Store manages draft lifecycle in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a draft store backed by the given Valkey client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client, ttl: DefaultTTL}
}

// Save stores the draft as JSON and resets its TTL.
func (s *Store) Save(ctx context.Context, d *Draft) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("draft marshal: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+d.ID.String(), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("draft store: %w", err)
	}
	return nil
}

// Get loads a draft by ID. Returns nil if it does not exist or has expired.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Draft, error) {
	payload, err := s.client.Get(ctx, keyPrefix+id.String()).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("draft get: %w", err)
	}

	var d Draft
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("draft unmarshal: %w", err)
	}
	return &d, nil
}

// Delete removes a draft, typically after a successful publish.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, keyPrefix+id.String()).Err(); err != nil {
		return fmt.Errorf("draft delete: %w", err)
	}
	return nil
}
