// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store contains the PostgreSQL persistence layer for published
// story documents.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"storypress/internal/models"
)

var (
	// ErrNotFound means no story exists for the given slug.
	ErrNotFound = errors.New("store: story not found")
	// ErrStaleRevision means the caller's expected revision no longer
	// matches the stored one — another publish won the race.
	ErrStaleRevision = errors.New("store: story revision is stale")
)

// StoryStore handles story document persistence. Documents are immutable
// once stored except through a full re-publish of the same slug.
type StoryStore struct {
	db *sql.DB
}

// NewStoryStore creates a StoryStore with the given database connection.
func NewStoryStore(db *sql.DB) *StoryStore {
	return &StoryStore{db: db}
}

// Publish inserts or replaces the document stored under doc.Slug and
// returns the stored copy with id, revision, and timestamps filled in.
//
// expectedRevision is an optimistic concurrency check: when non-zero, the
// write only succeeds if the stored revision still matches, otherwise
// ErrStaleRevision is returned. A non-zero expectation against a slug with
// no stored row is stale too (the story was deleted since the caller read
// it). Zero skips the check and preserves the original last-write-wins
// behaviour for callers that don't care.
func (s *StoryStore) Publish(doc *models.StoryDocument, expectedRevision int) (*models.StoryDocument, error) {
	tags, err := json.Marshal(doc.Tags)
	if err != nil {
		return nil, fmt.Errorf("publish story: marshal tags: %w", err)
	}
	pages, err := json.Marshal(doc.Pages)
	if err != nil {
		return nil, fmt.Errorf("publish story: marshal pages: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("publish story: begin: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRow(`SELECT revision FROM stories WHERE slug = $1 FOR UPDATE`, doc.Slug).Scan(&current)
	switch {
	case err == sql.ErrNoRows:
		current = 0
	case err != nil:
		return nil, fmt.Errorf("publish story: lock row: %w", err)
	}

	if expectedRevision != 0 && current != expectedRevision {
		return nil, ErrStaleRevision
	}

	result := &models.StoryDocument{}
	var tagsRaw, pagesRaw []byte
	var template sql.NullString

	if current == 0 {
		err = tx.QueryRow(`
			INSERT INTO stories (slug, title, tags, template, publisher, publisher_logo,
			                     poster_image, canonical_url, pages, revision, published_at)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, 1, NOW())
			RETURNING id, slug, title, tags, template, publisher,
			          COALESCE(publisher_logo, ''), COALESCE(poster_image, ''),
			          COALESCE(canonical_url, ''), pages, revision,
			          published_at, created_at, updated_at
		`, doc.Slug, doc.Title, tags, string(doc.Template), doc.Publisher,
			doc.PublisherLogo, doc.PosterImage, doc.CanonicalURL, pages,
		).Scan(
			&result.ID, &result.Slug, &result.Title, &tagsRaw, &template,
			&result.Publisher, &result.PublisherLogo, &result.PosterImage,
			&result.CanonicalURL, &pagesRaw, &result.Revision,
			&result.PublishedAt, &result.CreatedAt, &result.UpdatedAt,
		)
	} else {
		err = tx.QueryRow(`
			UPDATE stories SET
				title = $2, tags = $3, template = NULLIF($4, ''), publisher = $5,
				publisher_logo = $6, poster_image = $7, canonical_url = $8,
				pages = $9, revision = revision + 1, published_at = NOW(),
				updated_at = NOW()
			WHERE slug = $1
			RETURNING id, slug, title, tags, template, publisher,
			          COALESCE(publisher_logo, ''), COALESCE(poster_image, ''),
			          COALESCE(canonical_url, ''), pages, revision,
			          published_at, created_at, updated_at
		`, doc.Slug, doc.Title, tags, string(doc.Template), doc.Publisher,
			doc.PublisherLogo, doc.PosterImage, doc.CanonicalURL, pages,
		).Scan(
			&result.ID, &result.Slug, &result.Title, &tagsRaw, &template,
			&result.Publisher, &result.PublisherLogo, &result.PosterImage,
			&result.CanonicalURL, &pagesRaw, &result.Revision,
			&result.PublishedAt, &result.CreatedAt, &result.UpdatedAt,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("publish story: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("publish story: commit: %w", err)
	}

	if err := hydrate(result, tagsRaw, pagesRaw, template); err != nil {
		return nil, err
	}
	return result, nil
}

// FindBySlug retrieves a published story document. Returns ErrNotFound
// when the slug is unknown.
func (s *StoryStore) FindBySlug(slug string) (*models.StoryDocument, error) {
	result := &models.StoryDocument{}
	var tagsRaw, pagesRaw []byte
	var template sql.NullString

	err := s.db.QueryRow(`
		SELECT id, slug, title, tags, template, publisher,
		       COALESCE(publisher_logo, ''), COALESCE(poster_image, ''),
		       COALESCE(canonical_url, ''), pages, revision,
		       published_at, created_at, updated_at
		FROM stories WHERE slug = $1
	`, slug).Scan(
		&result.ID, &result.Slug, &result.Title, &tagsRaw, &template,
		&result.Publisher, &result.PublisherLogo, &result.PosterImage,
		&result.CanonicalURL, &pagesRaw, &result.Revision,
		&result.PublishedAt, &result.CreatedAt, &result.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find story by slug: %w", err)
	}

	if err := hydrate(result, tagsRaw, pagesRaw, template); err != nil {
		return nil, err
	}
	return result, nil
}

// ListRecent returns the most recently published stories, newest first.
func (s *StoryStore) ListRecent(limit int) ([]models.StoryDocument, error) {
	rows, err := s.db.Query(`
		SELECT id, slug, title, tags, template, publisher,
		       COALESCE(publisher_logo, ''), COALESCE(poster_image, ''),
		       COALESCE(canonical_url, ''), pages, revision,
		       published_at, created_at, updated_at
		FROM stories
		ORDER BY published_at DESC NULLS LAST
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	defer rows.Close()

	var items []models.StoryDocument
	for rows.Next() {
		var doc models.StoryDocument
		var tagsRaw, pagesRaw []byte
		var template sql.NullString
		if err := rows.Scan(
			&doc.ID, &doc.Slug, &doc.Title, &tagsRaw, &template,
			&doc.Publisher, &doc.PublisherLogo, &doc.PosterImage,
			&doc.CanonicalURL, &pagesRaw, &doc.Revision,
			&doc.PublishedAt, &doc.CreatedAt, &doc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan story: %w", err)
		}
		if err := hydrate(&doc, tagsRaw, pagesRaw, template); err != nil {
			return nil, err
		}
		items = append(items, doc)
	}
	return items, rows.Err()
}

// SlugExists reports whether a story is already stored under slug.
func (s *StoryStore) SlugExists(slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM stories WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("slug exists: %w", err)
	}
	return exists, nil
}

// Delete removes a story by slug.
func (s *StoryStore) Delete(slug string) error {
	_, err := s.db.Exec(`DELETE FROM stories WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("delete story: %w", err)
	}
	return nil
}

// hydrate unmarshals the JSONB columns into the document.
func hydrate(doc *models.StoryDocument, tagsRaw, pagesRaw []byte, template sql.NullString) error {
	if template.Valid {
		doc.Template = models.TemplateKey(template.String)
	}
	if len(tagsRaw) > 0 {
		if err := json.Unmarshal(tagsRaw, &doc.Tags); err != nil {
			return fmt.Errorf("unmarshal story tags: %w", err)
		}
	}
	if len(pagesRaw) > 0 {
		if err := json.Unmarshal(pagesRaw, &doc.Pages); err != nil {
			return fmt.Errorf("unmarshal story pages: %w", err)
		}
	}
	return nil
}
