// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storypress/internal/amp"
	"storypress/internal/cache"
	"storypress/internal/models"
	"storypress/internal/player"
	"storypress/internal/session"
	"storypress/internal/store"
)

// Story groups the published-story delivery handlers: the interactive
// player page, the static AMP document, and the raw document JSON.
type Story struct {
	stories     *store.StoryStore
	renderer    *player.Renderer
	flags       player.SessionFlags
	markupCache *cache.MarkupCache

	ampConfig    amp.Config
	adClient     string
	secureCookie bool
}

// NewStory creates the delivery handler group. markupCache may be nil;
// flags may be nil when the deployment has no session backend, which
// simply disables the interstitial.
func NewStory(
	storyStore *store.StoryStore,
	renderer *player.Renderer,
	flags player.SessionFlags,
	markupCache *cache.MarkupCache,
	ampConfig amp.Config,
	adClient string,
	secureCookie bool,
) *Story {
	return &Story{
		stories:      storyStore,
		renderer:     renderer,
		flags:        flags,
		markupCache:  markupCache,
		ampConfig:    ampConfig,
		adClient:     adClient,
		secureCookie: secureCookie,
	}
}

// PlayerPage serves the interactive story player. The interstitial ad is
// armed at most once per story per viewer session: the flag is checked
// before render and marked immediately after a render that shows it, so a
// reload cannot re-trigger the overlay.
func (s *Story) PlayerPage(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadStory(w, r)
	if !ok {
		return
	}

	opts := player.Options{AdClient: s.adClient}
	var sessionID string
	if s.flags != nil && s.adClient != "" {
		var err error
		sessionID, err = session.EnsureViewer(w, r, s.secureCookie)
		if err != nil {
			slog.Warn("viewer session failed", "error", err, "slug", doc.Slug)
		} else {
			seen, err := s.flags.Seen(r.Context(), sessionID, doc.Slug)
			if err != nil {
				slog.Warn("session flag check failed", "error", err, "slug", doc.Slug)
			}
			// On flag errors the interstitial stays off. Showing it twice
			// is worse than not showing it.
			opts.ShowInterstitial = err == nil && !seen
		}
	}

	html, err := s.renderer.Render(doc, opts)
	if err != nil {
		slog.Error("player render failed", "error", err, "slug", doc.Slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if opts.ShowInterstitial {
		if err := s.flags.MarkSeen(r.Context(), sessionID, doc.Slug); err != nil {
			slog.Warn("session flag set failed", "error", err, "slug", doc.Slug)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(html)
}

// AMPDoc serves the compiled static markup for a story. The compiled
// document is cached server-side by slug; the HTTP response itself is
// never client-cached, since ad presence depends on runtime config.
func (s *Story) AMPDoc(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var markup []byte
	if s.markupCache != nil {
		if cached, hit := s.markupCache.Get(r.Context(), slug); hit {
			markup = cached
		}
	}

	if markup == nil {
		doc, ok := s.loadStory(w, r)
		if !ok {
			return
		}
		markup = []byte(amp.Compile(doc, s.ampConfig))
		if s.markupCache != nil {
			s.markupCache.Set(r.Context(), slug, markup)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(markup)
}

// DocumentJSON serves the persisted story document as JSON.
func (s *Story) DocumentJSON(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadStory(w, r)
	if !ok {
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, doc)
}

// ListRecent returns the latest published stories.
func (s *Story) ListRecent(w http.ResponseWriter, r *http.Request) {
	docs, err := s.stories.ListRecent(50)
	if err != nil {
		slog.Error("story list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not list stories.")
		return
	}
	if docs == nil {
		docs = []models.StoryDocument{}
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, docs)
}

func (s *Story) loadStory(w http.ResponseWriter, r *http.Request) (*models.StoryDocument, bool) {
	slug := chi.URLParam(r, "slug")
	doc, err := s.stories.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return nil, false
		}
		slog.Error("story load failed", "error", err, "slug", slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	return doc, true
}
