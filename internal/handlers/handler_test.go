// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"storypress/internal/ai"
	"storypress/internal/amp"
	"storypress/internal/cache"
	"storypress/internal/captions"
	"storypress/internal/database"
	"storypress/internal/drafts"
	"storypress/internal/models"
	"storypress/internal/player"
	"storypress/internal/pool"
	"storypress/internal/store"
)

// mockAIProvider implements ai.Provider for handler tests.
type mockAIProvider struct {
	name     string
	response string
	err      error
}

func (m *mockAIProvider) Name() string { return m.name }
func (m *mockAIProvider) Generate(_ context.Context, _, _ string) (string, error) {
	return m.response, m.err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "storypress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "storypress")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"draft:*", "story:markup:*", "interstitial:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// fakePool serves canned candidate pool responses.
func fakePool(t *testing.T, imageCount, min, max int) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		images := make([]models.ImageCandidate, imageCount)
		for i := range images {
			images[i] = models.ImageCandidate{
				ID:       fmt.Sprintf("img-%d", i),
				Provider: "testpool",
				FullURL:  fmt.Sprintf("https://img.example/%d-full.jpg", i),
				ThumbURL: fmt.Sprintf("https://img.example/%d-thumb.jpg", i),
			}
		}
		json.NewEncoder(w).Encode(pool.Result{
			Images:      images,
			Constraints: models.Constraints{Min: min, Max: max},
			Meta:        models.PoolMeta{Title: "Pool title"},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB          *sql.DB
	Valkey      *redis.Client
	Drafts      *drafts.Store
	Stories     *store.StoryStore
	MarkupCache *cache.MarkupCache
	Flags       *player.MemoryFlags
	AIRegistry  *ai.Registry
	Author      *Author
	Story       *Story
}

// newTestEnv creates a complete test environment. The candidate pool is the
// given fake server; the AI registry starts with a mock that succeeds.
func newTestEnv(t *testing.T, poolURL string) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	aiRegistry := ai.NewRegistry("test", nil)
	aiRegistry.Register("test", &mockAIProvider{
		name:     "test",
		response: `{"heading": "AI heading", "subheading": "AI subheading"}`,
	})

	renderer, err := player.New()
	if err != nil {
		t.Fatalf("player.New: %v", err)
	}

	env := &testEnv{
		DB:          db,
		Valkey:      vk,
		Drafts:      drafts.NewStore(vk),
		Stories:     store.NewStoryStore(db),
		MarkupCache: cache.NewMarkupCache(vk, cache.DefaultMarkupTTL),
		Flags:       player.NewMemoryFlags(),
		AIRegistry:  aiRegistry,
	}
	env.Author = NewAuthor(
		pool.New(poolURL), env.Drafts, env.Stories,
		captions.NewRewriter(aiRegistry), env.MarkupCache,
		"StoryPress", "", "https://stories.example",
	)
	env.Story = NewStory(
		env.Stories, renderer, env.Flags, env.MarkupCache,
		amp.Config{AdSlot: "/123/story", AnalyticsID: "G-TEST"},
		"ca-pub-test", false,
	)
	return env
}

// cleanupStory removes a published story after the test.
func cleanupStory(t *testing.T, env *testEnv, slug string) {
	t.Helper()
	t.Cleanup(func() { env.Stories.Delete(slug) })
}

// decodeDraft unpacks a draft JSON response.
func decodeDraft(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode draft response: %v (body: %s)", err, rec.Body.String())
	}
	return body
}

// testNonce returns a unique number for building collision-free test data.
func testNonce() int64 {
	return time.Now().UnixNano()
}

// draftID extracts and parses the draft id from a decoded response.
func draftID(t *testing.T, body map[string]any) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(body["id"].(string))
	if err != nil {
		t.Fatalf("parse draft id: %v", err)
	}
	return id
}
