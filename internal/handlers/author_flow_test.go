// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

// withChiParams injects chi URL params into the request context.
func withChiParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// call invokes a handler with chi URL params injected into the context.
func call(handler http.HandlerFunc, method, target, body string, params map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withChiParams(req, params)

	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

// TestAuthoringFlow walks the whole workflow end to end: fetch 10
// candidates with bounds (8, 12), pick a cover and 9 slides, advance with
// no captions, and publish. The published document must have 10 pages in
// final-sequence order with placeholder captions throughout.
func TestAuthoringFlow(t *testing.T) {
	poolSrv := fakePool(t, 10, 8, 12)
	env := newTestEnv(t, poolSrv.URL)

	// Create the draft.
	rec := call(env.Author.DraftCreate, http.MethodPost, "/api/drafts",
		`{"topic": "card perks", "min": 8, "max": 12}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("DraftCreate status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeDraft(t, rec)
	id := draftID(t, body)
	idStr := id.String()

	// Total-page bounds (8, 12) derive slide bounds (7, 11).
	if got := body["min_slides"].(float64); got != 7 {
		t.Errorf("min_slides = %v, want 7", got)
	}
	if got := body["max_slides"].(float64); got != 11 {
		t.Errorf("max_slides = %v, want 11", got)
	}
	if got := body["phase"].(string); got != "selecting" {
		t.Errorf("phase = %q, want selecting", got)
	}

	// Pick img-0 as cover and img-1..img-9 as slides.
	rec = call(env.Author.CoverToggle, http.MethodPost, "/api/drafts/"+idStr+"/cover",
		`{"imageId": "img-0"}`, map[string]string{"id": idStr})
	if rec.Code != http.StatusOK {
		t.Fatalf("CoverToggle status = %d: %s", rec.Code, rec.Body.String())
	}

	for i := 1; i <= 9; i++ {
		rec = call(env.Author.SlideToggle, http.MethodPost, "/api/drafts/"+idStr+"/slides",
			fmt.Sprintf(`{"imageId": "img-%d"}`, i), map[string]string{"id": idStr})
		if rec.Code != http.StatusOK {
			t.Fatalf("SlideToggle img-%d status = %d: %s", i, rec.Code, rec.Body.String())
		}
	}

	body = decodeDraft(t, rec)
	if got := body["can_advance"].(bool); !got {
		t.Fatal("can_advance = false with cover and 9 slides")
	}

	// Advance with zero captions: the prefill synthesizes all 10.
	rec = call(env.Author.Advance, http.MethodPost, "/api/drafts/"+idStr+"/advance",
		"", map[string]string{"id": idStr})
	if rec.Code != http.StatusOK {
		t.Fatalf("Advance status = %d: %s", rec.Code, rec.Body.String())
	}
	body = decodeDraft(t, rec)
	caps := body["captions"].([]any)
	if len(caps) != 10 {
		t.Fatalf("caption count after advance = %d, want 10", len(caps))
	}
	if got := body["phase"].(string); got != "caption_editing" {
		t.Errorf("phase = %q, want caption_editing", got)
	}
	if got := body["can_publish"].(bool); !got {
		t.Error("can_publish = false in caption phase")
	}

	// Publish.
	rec = call(env.Author.Publish, http.MethodPost, "/api/drafts/"+idStr+"/publish",
		`{"title": "Ten card perks", "tags": ["credit-card"]}`, map[string]string{"id": idStr})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Publish status = %d: %s", rec.Code, rec.Body.String())
	}
	pub := decodeDraft(t, rec)
	slug := pub["slug"].(string)
	cleanupStory(t, env, slug)
	if !strings.HasPrefix(slug, "ten-card-perks") {
		t.Errorf("slug = %q", slug)
	}

	// The stored document has 10 pages in final-sequence order.
	doc, err := env.Stories.FindBySlug(slug)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if len(doc.Pages) != 10 {
		t.Fatalf("page count = %d, want 10", len(doc.Pages))
	}
	if doc.Pages[0].BackgroundImageURL != "https://img.example/0-full.jpg" {
		t.Errorf("cover page url = %q", doc.Pages[0].BackgroundImageURL)
	}
	for i := 1; i < 10; i++ {
		want := fmt.Sprintf("https://img.example/%d-full.jpg", i)
		if doc.Pages[i].BackgroundImageURL != want {
			t.Errorf("page %d url = %q, want %q", i, doc.Pages[i].BackgroundImageURL, want)
		}
		if doc.Pages[i].Heading == "" {
			t.Errorf("page %d missing placeholder heading", i)
		}
	}
	// The template was frozen at publish: "credit-card" maps to bold.
	if doc.Template != "bold" {
		t.Errorf("template = %q, want bold", doc.Template)
	}
	if doc.Revision != 1 {
		t.Errorf("revision = %d, want 1", doc.Revision)
	}

	// The draft is gone.
	d, err := env.Drafts.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("draft Get: %v", err)
	}
	if d != nil {
		t.Error("draft still present after publish")
	}
}

func TestDraftCreateValidation(t *testing.T) {
	poolSrv := fakePool(t, 10, 8, 12)
	env := newTestEnv(t, poolSrv.URL)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing topic", `{"min": 3, "max": 5}`, http.StatusUnprocessableEntity},
		{"min below floor", `{"topic": "x", "min": 1, "max": 5}`, http.StatusUnprocessableEntity},
		{"max below min", `{"topic": "x", "min": 5, "max": 3}`, http.StatusUnprocessableEntity},
		{"bad json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(env.Author.DraftCreate, http.MethodPost, "/api/drafts", tt.body, nil)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestSelectionGuardResponses(t *testing.T) {
	poolSrv := fakePool(t, 6, 3, 4) // slide bounds (2, 3)
	env := newTestEnv(t, poolSrv.URL)

	rec := call(env.Author.DraftCreate, http.MethodPost, "/api/drafts",
		`{"topic": "t", "min": 3, "max": 4}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("DraftCreate: %d", rec.Code)
	}
	idStr := draftID(t, decodeDraft(t, rec)).String()
	params := map[string]string{"id": idStr}

	// Cover first, then try to toggle it as a slide: 422.
	call(env.Author.CoverToggle, http.MethodPost, "/x", `{"imageId": "img-0"}`, params)
	rec = call(env.Author.SlideToggle, http.MethodPost, "/x", `{"imageId": "img-0"}`, params)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("cover-as-slide status = %d, want 422", rec.Code)
	}

	// Fill to capacity, then overflow: 422.
	for i := 1; i <= 3; i++ {
		call(env.Author.SlideToggle, http.MethodPost, "/x",
			fmt.Sprintf(`{"imageId": "img-%d"}`, i), params)
	}
	rec = call(env.Author.SlideToggle, http.MethodPost, "/x", `{"imageId": "img-4"}`, params)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("overflow status = %d, want 422", rec.Code)
	}

	// Unknown image id: 422.
	rec = call(env.Author.SlideToggle, http.MethodPost, "/x", `{"imageId": "nope"}`, params)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown image status = %d, want 422", rec.Code)
	}

	// Advance, then try a selection edit: 409 (wrong phase).
	rec = call(env.Author.Advance, http.MethodPost, "/x", "", params)
	if rec.Code != http.StatusOK {
		t.Fatalf("Advance status = %d: %s", rec.Code, rec.Body.String())
	}
	rec = call(env.Author.SlideToggle, http.MethodPost, "/x", `{"imageId": "img-5"}`, params)
	if rec.Code != http.StatusConflict {
		t.Errorf("toggle in caption phase status = %d, want 409", rec.Code)
	}
}

func TestAdvanceWithoutCover(t *testing.T) {
	poolSrv := fakePool(t, 6, 3, 4)
	env := newTestEnv(t, poolSrv.URL)

	rec := call(env.Author.DraftCreate, http.MethodPost, "/api/drafts",
		`{"topic": "t", "min": 3, "max": 4}`, nil)
	idStr := draftID(t, decodeDraft(t, rec)).String()

	rec = call(env.Author.Advance, http.MethodPost, "/x", "", map[string]string{"id": idStr})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("advance without cover status = %d, want 422", rec.Code)
	}
}

func TestCaptionUpdateAndRewrite(t *testing.T) {
	poolSrv := fakePool(t, 6, 3, 4)
	env := newTestEnv(t, poolSrv.URL)

	rec := call(env.Author.DraftCreate, http.MethodPost, "/api/drafts",
		`{"topic": "t", "min": 3, "max": 4}`, nil)
	idStr := draftID(t, decodeDraft(t, rec)).String()
	params := map[string]string{"id": idStr}

	call(env.Author.CoverToggle, http.MethodPost, "/x", `{"imageId": "img-0"}`, params)
	call(env.Author.SlideToggle, http.MethodPost, "/x", `{"imageId": "img-1"}`, params)
	call(env.Author.SlideToggle, http.MethodPost, "/x", `{"imageId": "img-2"}`, params)

	// Captions are locked before advancing: 409.
	capParams := map[string]string{"id": idStr, "index": "0"}
	rec = call(env.Author.CaptionUpdate, http.MethodPut, "/x", `{"heading": "Early"}`, capParams)
	if rec.Code != http.StatusConflict {
		t.Errorf("caption edit in selecting phase status = %d, want 409", rec.Code)
	}

	call(env.Author.Advance, http.MethodPost, "/x", "", params)

	// Edit caption 1.
	capParams["index"] = "1"
	rec = call(env.Author.CaptionUpdate, http.MethodPut, "/x",
		`{"heading": "Manual heading", "overlay": {"position": "top", "tone": "light"}}`, capParams)
	if rec.Code != http.StatusOK {
		t.Fatalf("CaptionUpdate status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeDraft(t, rec)
	cap1 := body["captions"].([]any)[1].(map[string]any)
	if cap1["heading"] != "Manual heading" {
		t.Errorf("caption 1 = %+v", cap1)
	}

	// Index out of range: 422.
	rec = call(env.Author.CaptionUpdate, http.MethodPut, "/x", `{"heading": "x"}`,
		map[string]string{"id": idStr, "index": "99"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("out-of-range index status = %d, want 422", rec.Code)
	}

	// Rewrite caption 0 with the mock AI.
	rec = call(env.Author.CaptionRewrite, http.MethodPost, "/x", "",
		map[string]string{"id": idStr, "index": "0"})
	if rec.Code != http.StatusOK {
		t.Fatalf("CaptionRewrite status = %d: %s", rec.Code, rec.Body.String())
	}
	body = decodeDraft(t, rec)
	cap0 := body["captions"].([]any)[0].(map[string]any)
	if cap0["heading"] != "AI heading" {
		t.Errorf("rewritten caption 0 = %+v", cap0)
	}

	// A failing provider leaves the stored caption untouched and maps to 502.
	env.AIRegistry.Register("test", &mockAIProvider{name: "test", err: fmt.Errorf("unreachable")})
	rec = call(env.Author.CaptionRewrite, http.MethodPost, "/x", "",
		map[string]string{"id": idStr, "index": "1"})
	if rec.Code != http.StatusBadGateway {
		t.Errorf("failed rewrite status = %d, want 502", rec.Code)
	}

	rec = call(env.Author.DraftGet, http.MethodGet, "/x", "", params)
	body = decodeDraft(t, rec)
	cap1 = body["captions"].([]any)[1].(map[string]any)
	if cap1["heading"] != "Manual heading" {
		t.Errorf("caption 1 changed by failed rewrite: %+v", cap1)
	}
}

func TestPublishRepublishConflict(t *testing.T) {
	poolSrv := fakePool(t, 6, 3, 4)
	env := newTestEnv(t, poolSrv.URL)

	makeDraft := func() string {
		rec := call(env.Author.DraftCreate, http.MethodPost, "/api/drafts",
			`{"topic": "t", "min": 3, "max": 4}`, nil)
		idStr := draftID(t, decodeDraft(t, rec)).String()
		params := map[string]string{"id": idStr}
		call(env.Author.CoverToggle, http.MethodPost, "/x", `{"imageId": "img-0"}`, params)
		call(env.Author.SlideToggle, http.MethodPost, "/x", `{"imageId": "img-1"}`, params)
		call(env.Author.SlideToggle, http.MethodPost, "/x", `{"imageId": "img-2"}`, params)
		call(env.Author.Advance, http.MethodPost, "/x", "", params)
		return idStr
	}

	// First publish with an explicit slug.
	idStr := makeDraft()
	slug := fmt.Sprintf("conflict-test-%s", idStr[:8])
	cleanupStory(t, env, slug)
	rec := call(env.Author.Publish, http.MethodPost, "/x",
		fmt.Sprintf(`{"title": "T", "slug": %q}`, slug), map[string]string{"id": idStr})
	if rec.Code != http.StatusCreated {
		t.Fatalf("first publish: %d %s", rec.Code, rec.Body.String())
	}

	// Re-publish expecting a stale revision: 409.
	idStr = makeDraft()
	rec = call(env.Author.Publish, http.MethodPost, "/x",
		fmt.Sprintf(`{"title": "T2", "slug": %q, "expected_revision": 7}`, slug),
		map[string]string{"id": idStr})
	if rec.Code != http.StatusConflict {
		t.Errorf("stale republish status = %d, want 409: %s", rec.Code, rec.Body.String())
	}

	// Re-publish with the right expectation succeeds and bumps the revision.
	rec = call(env.Author.Publish, http.MethodPost, "/x",
		fmt.Sprintf(`{"title": "T2", "slug": %q, "expected_revision": 1}`, slug),
		map[string]string{"id": idStr})
	if rec.Code != http.StatusCreated {
		t.Fatalf("matching republish: %d %s", rec.Code, rec.Body.String())
	}
	pub := decodeDraft(t, rec)
	if pub["revision"].(float64) != 2 {
		t.Errorf("revision = %v, want 2", pub["revision"])
	}
}

func TestPublishDerivedSlugDisambiguates(t *testing.T) {
	poolSrv := fakePool(t, 6, 3, 4)
	env := newTestEnv(t, poolSrv.URL)

	publish := func(title string) string {
		rec := call(env.Author.DraftCreate, http.MethodPost, "/api/drafts",
			`{"topic": "t", "min": 3, "max": 4}`, nil)
		idStr := draftID(t, decodeDraft(t, rec)).String()
		params := map[string]string{"id": idStr}
		call(env.Author.CoverToggle, http.MethodPost, "/x", `{"imageId": "img-0"}`, params)
		call(env.Author.SlideToggle, http.MethodPost, "/x", `{"imageId": "img-1"}`, params)
		call(env.Author.SlideToggle, http.MethodPost, "/x", `{"imageId": "img-2"}`, params)
		call(env.Author.Advance, http.MethodPost, "/x", "", params)

		rec = call(env.Author.Publish, http.MethodPost, "/x",
			fmt.Sprintf(`{"title": %q}`, title), params)
		if rec.Code != http.StatusCreated {
			t.Fatalf("publish: %d %s", rec.Code, rec.Body.String())
		}
		slug := decodeDraft(t, rec)["slug"].(string)
		cleanupStory(t, env, slug)
		return slug
	}

	title := fmt.Sprintf("Same Title %d", testNonce())
	first := publish(title)
	second := publish(title)
	if first == second {
		t.Errorf("derived slugs collide: %q", first)
	}
	if !strings.HasPrefix(second, first) {
		t.Errorf("second slug %q does not extend %q", second, first)
	}
}

func TestDraftNotFound(t *testing.T) {
	poolSrv := fakePool(t, 6, 3, 4)
	env := newTestEnv(t, poolSrv.URL)

	rec := call(env.Author.DraftGet, http.MethodGet, "/x", "",
		map[string]string{"id": "63e0b7f2-7e2e-4bd8-9c51-000000000000"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown draft status = %d, want 404", rec.Code)
	}

	rec = call(env.Author.DraftGet, http.MethodGet, "/x", "",
		map[string]string{"id": "not-a-uuid"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed id status = %d, want 400", rec.Code)
	}
}
