// Package router sets up all HTTP routes and middleware chains for the
// StoryPress service. Authoring endpoints live under /api/drafts, story
// delivery under /stories and /api/stories.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"storypress/internal/handlers"
	"storypress/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(author *handlers.Author, story *handlers.Story) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check.
	r.Get("/health", healthHandler)

	// Authoring workflow — drafts live in Valkey and expire on their own.
	r.Route("/api/drafts", func(r chi.Router) {
		r.Post("/", author.DraftCreate)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", author.DraftGet)
			r.Post("/cover", author.CoverToggle)
			r.Post("/slides", author.SlideToggle)
			r.Post("/advance", author.Advance)
			r.Post("/back", author.Back)
			r.Put("/captions/{index}", author.CaptionUpdate)
			r.Post("/publish", author.Publish)

			// The rewrite endpoint calls out to a paid LLM API.
			rewriteLimit := middleware.NewRateLimiter(10, time.Minute)
			r.With(rewriteLimit.Middleware).Post("/captions/{index}/rewrite", author.CaptionRewrite)
		})
	})

	// Published story delivery.
	r.Get("/stories/{slug}", story.PlayerPage)
	r.Get("/stories/{slug}/amp", story.AMPDoc)
	r.Get("/api/stories", story.ListRecent)
	r.Get("/api/stories/{slug}", story.DocumentJSON)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
