// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"storypress/internal/cache"
	"storypress/internal/captions"
	"storypress/internal/drafts"
	"storypress/internal/models"
	"storypress/internal/pool"
	"storypress/internal/selection"
	"storypress/internal/slug"
	"storypress/internal/store"
	"storypress/internal/templates"
)

// Author groups the JSON handlers that drive the two-phase authoring
// workflow: candidate fetch, cover/slide selection, caption editing with
// per-slide AI rewrite, and the terminal publish.
type Author struct {
	pool        *pool.Client
	drafts      *drafts.Store
	stories     *store.StoryStore
	rewriter    *captions.Rewriter
	markupCache *cache.MarkupCache

	publisher     string
	publisherLogo string
	publicBaseURL string
}

// NewAuthor creates the authoring handler group. markupCache may be nil.
func NewAuthor(
	poolClient *pool.Client,
	draftStore *drafts.Store,
	storyStore *store.StoryStore,
	rewriter *captions.Rewriter,
	markupCache *cache.MarkupCache,
	publisher, publisherLogo, publicBaseURL string,
) *Author {
	return &Author{
		pool:          poolClient,
		drafts:        draftStore,
		stories:       storyStore,
		rewriter:      rewriter,
		markupCache:   markupCache,
		publisher:     publisher,
		publisherLogo: publisherLogo,
		publicBaseURL: publicBaseURL,
	}
}

// draftView is the API representation of a draft, including the derived
// workflow gates so the UI never re-implements the guard logic.
type draftView struct {
	ID         string                  `json:"id"`
	Topic      string                  `json:"topic"`
	Title      string                  `json:"title"`
	Phase      selection.Phase         `json:"phase"`
	CoverID    string                  `json:"cover_id,omitempty"`
	SlideIDs   []string                `json:"slide_ids"`
	MinSlides  int                     `json:"min_slides"`
	MaxSlides  int                     `json:"max_slides"`
	CanAdvance bool                    `json:"can_advance"`
	CanPublish bool                    `json:"can_publish"`
	Candidates []models.ImageCandidate `json:"candidates"`
	Captions   []models.SlideCaption   `json:"captions"`
}

func viewOf(d *drafts.Draft) draftView {
	lo, hi := d.Selection.SlideBounds()
	v := draftView{
		ID:         d.ID.String(),
		Topic:      d.Topic,
		Title:      d.Title,
		Phase:      d.Selection.Phase,
		CoverID:    d.Selection.CoverID,
		SlideIDs:   d.Selection.SlideIDs,
		MinSlides:  lo,
		MaxSlides:  hi,
		CanAdvance: d.Selection.CanAdvance(),
		CanPublish: d.Selection.CanPublish(),
		Candidates: d.Candidates,
		Captions:   d.Captions,
	}
	if v.SlideIDs == nil {
		v.SlideIDs = []string{}
	}
	if v.Captions == nil {
		v.Captions = []models.SlideCaption{}
	}
	return v
}

// DraftCreate starts a new workflow: fetches candidates from the pool and
// stores a fresh Selecting-phase draft.
func (a *Author) DraftCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic string `json:"topic"`
		Min   int    `json:"min"`
		Max   int    `json:"max"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if msg := validateDraftRequest(req.Topic, req.Min, req.Max); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	result, err := a.pool.Fetch(r.Context(), req.Topic, req.Min, req.Max)
	if err != nil {
		slog.Error("candidate fetch failed", "error", err, "topic", req.Topic)
		switch {
		case errors.Is(err, pool.ErrInsufficientImages):
			writeError(w, http.StatusUnprocessableEntity, "Not enough images found for this topic. Try a broader one.")
		case errors.Is(err, pool.ErrInvalidResponse):
			writeError(w, http.StatusBadGateway, "The image source returned an unusable response.")
		default:
			writeError(w, http.StatusBadGateway, "Fetching images failed. Try again.")
		}
		return
	}

	title := result.Meta.Title
	if title == "" {
		title = req.Topic
	}

	d := &drafts.Draft{
		ID:         uuid.New(),
		Topic:      req.Topic,
		Title:      title,
		Candidates: result.Images,
		Selection:  selection.New(result.Constraints.Min, result.Constraints.Max),
		Captions:   result.Meta.Slides,
		AIPrompts:  result.Meta.AIPrompts,
		CreatedAt:  time.Now(),
	}
	if err := a.drafts.Save(r.Context(), d); err != nil {
		slog.Error("draft save failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not store the draft.")
		return
	}

	writeJSON(w, http.StatusCreated, viewOf(d))
}

// DraftGet returns the current draft state.
func (a *Author) DraftGet(w http.ResponseWriter, r *http.Request) {
	d, ok := a.loadDraft(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(d))
}

// CoverToggle sets or clears the cover image. Picking an image that is in
// the slide set evicts it from there.
func (a *Author) CoverToggle(w http.ResponseWriter, r *http.Request) {
	a.toggle(w, r, func(st selection.State, id string) (selection.State, error) {
		return st.ToggleCover(id)
	})
}

// SlideToggle adds or removes a content slide, subject to the capacity
// guard and the cover-exclusion rule.
func (a *Author) SlideToggle(w http.ResponseWriter, r *http.Request) {
	a.toggle(w, r, func(st selection.State, id string) (selection.State, error) {
		return st.ToggleSlide(id)
	})
}

func (a *Author) toggle(w http.ResponseWriter, r *http.Request, fn func(selection.State, string) (selection.State, error)) {
	d, ok := a.loadDraft(w, r)
	if !ok {
		return
	}

	var req struct {
		ImageID string `json:"imageId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ImageID == "" {
		writeError(w, http.StatusBadRequest, "imageId is required.")
		return
	}
	if d.Candidate(req.ImageID) == nil {
		writeError(w, http.StatusUnprocessableEntity, "Unknown image id.")
		return
	}

	st, err := fn(d.Selection, req.ImageID)
	if err != nil {
		writeError(w, guardStatus(err), guardMessage(err))
		return
	}
	d.Selection = st

	if err := a.drafts.Save(r.Context(), d); err != nil {
		slog.Error("draft save failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not store the draft.")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(d))
}

// Advance moves the draft from Selecting to CaptionEditing and prefills
// the caption list so the editor always sees one caption per page.
func (a *Author) Advance(w http.ResponseWriter, r *http.Request) {
	d, ok := a.loadDraft(w, r)
	if !ok {
		return
	}

	st, err := d.Selection.Advance()
	if err != nil {
		writeError(w, guardStatus(err), guardMessage(err))
		return
	}
	d.Selection = st
	d.Captions = captions.Reconcile(d.Title, d.Captions, len(st.FinalSequence()))

	if err := a.drafts.Save(r.Context(), d); err != nil {
		slog.Error("draft save failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not store the draft.")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(d))
}

// Back returns to the selection phase. Caption edits are retained.
func (a *Author) Back(w http.ResponseWriter, r *http.Request) {
	d, ok := a.loadDraft(w, r)
	if !ok {
		return
	}

	d.Selection = d.Selection.Back()

	if err := a.drafts.Save(r.Context(), d); err != nil {
		slog.Error("draft save failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not store the draft.")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(d))
}

// CaptionUpdate edits a single caption in place.
func (a *Author) CaptionUpdate(w http.ResponseWriter, r *http.Request) {
	d, idx, ok := a.loadDraftCaption(w, r)
	if !ok {
		return
	}

	var req struct {
		Heading    string          `json:"heading"`
		Subheading string          `json:"subheading"`
		CTAURL     string          `json:"cta_url"`
		CTALabel   string          `json:"cta_label"`
		Overlay    *models.Overlay `json:"overlay"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if msg := validateCaption(req.Heading, req.Subheading, req.CTALabel, req.CTAURL); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	c := &d.Captions[idx]
	c.Heading = req.Heading
	c.Subheading = req.Subheading
	c.CTAURL = req.CTAURL
	c.CTALabel = req.CTALabel
	if req.Overlay != nil {
		ov := *req.Overlay
		c.Overlay = &ov
	}

	if err := a.drafts.Save(r.Context(), d); err != nil {
		slog.Error("draft save failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not store the draft.")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(d))
}

// CaptionRewrite sends one caption through the AI rewrite capability. On
// failure the stored caption is untouched and the error is surfaced; the
// author re-clicks to retry.
func (a *Author) CaptionRewrite(w http.ResponseWriter, r *http.Request) {
	d, idx, ok := a.loadDraftCaption(w, r)
	if !ok {
		return
	}

	hints := captions.Hints{
		Title: d.Title,
		Tone:  d.AIPrompts,
	}
	rewritten, err := a.rewriter.RewriteOne(r.Context(), hints, d.Captions[idx])
	if err != nil {
		slog.Error("caption rewrite failed", "error", err, "draft", d.ID, "index", idx)
		writeError(w, http.StatusBadGateway, "Rewrite failed. The caption was left unchanged.")
		return
	}
	d.Captions[idx] = rewritten

	if err := a.drafts.Save(r.Context(), d); err != nil {
		slog.Error("draft save failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not store the draft.")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(d))
}

// Publish finalizes the draft: reconciles captions against the final image
// sequence, freezes the template assignment, persists the StoryDocument,
// and deletes the draft. Responds with the canonical slug.
func (a *Author) Publish(w http.ResponseWriter, r *http.Request) {
	d, ok := a.loadDraft(w, r)
	if !ok {
		return
	}

	var req struct {
		Title            string             `json:"title"`
		Slug             string             `json:"slug"`
		Tags             []string           `json:"tags"`
		Template         models.TemplateKey `json:"template"`
		ExpectedRevision int                `json:"expected_revision"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body.")
			return
		}
	}
	if req.Title != "" {
		d.Title = req.Title
	}
	if msg := validatePublishRequest(d.Title, req.Slug, req.Tags); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	if !d.Selection.CanPublish() {
		if d.Selection.CoverID == "" {
			writeError(w, http.StatusUnprocessableEntity, guardMessage(selection.ErrMissingCover))
		} else {
			writeError(w, http.StatusUnprocessableEntity, guardMessage(selection.ErrSlideCountOutOfRange))
		}
		return
	}

	slugValue, err := a.resolveSlug(req.Slug, d.Title)
	if err != nil {
		slog.Error("slug resolution failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not derive a slug.")
		return
	}

	finalSeq := d.Selection.FinalSequence()
	caps := captions.Reconcile(d.Title, d.Captions, len(finalSeq))

	pages := make([]models.StoryPage, len(finalSeq))
	for i, imageID := range finalSeq {
		page := models.StoryPage{SlideCaption: caps[i]}
		page.ID = imageID
		if cand := d.Candidate(imageID); cand != nil {
			page.BackgroundImageURL = cand.FullURL
		}
		pages[i] = page
	}

	// The assignment is computed once here and frozen into the document,
	// so renderers and re-renders can never disagree with it.
	key := templates.Assign(slugValue, req.Tags, req.Template)

	doc := &models.StoryDocument{
		Slug:          slugValue,
		Title:         d.Title,
		Tags:          req.Tags,
		Template:      key,
		Publisher:     a.publisher,
		PublisherLogo: a.publisherLogo,
		Pages:         pages,
	}
	if len(pages) > 0 {
		doc.PosterImage = pages[0].BackgroundImageURL
	}
	if a.publicBaseURL != "" {
		doc.CanonicalURL = strings.TrimSuffix(a.publicBaseURL, "/") + "/stories/" + slugValue
	}

	stored, err := a.stories.Publish(doc, req.ExpectedRevision)
	if err != nil {
		if errors.Is(err, store.ErrStaleRevision) {
			writeError(w, http.StatusConflict, "This story was republished by someone else. Reload and try again.")
			return
		}
		slog.Error("publish failed", "error", err, "slug", slugValue)
		writeError(w, http.StatusInternalServerError, "Publishing failed. The draft was kept.")
		return
	}

	if a.markupCache != nil {
		a.markupCache.Invalidate(r.Context(), stored.Slug)
	}
	if err := a.drafts.Delete(r.Context(), d.ID); err != nil {
		slog.Warn("draft cleanup failed", "error", err, "draft", d.ID)
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"slug":     stored.Slug,
		"revision": stored.Revision,
	})
}

// resolveSlug picks the final slug: an explicit one is used as-is (the
// re-publish path), a derived one gets a numeric suffix until free.
func (a *Author) resolveSlug(explicit, title string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	base := slug.Generate(title)
	if base == "" {
		base = uuid.New().String()
	}

	candidate := base
	for n := 2; ; n++ {
		exists, err := a.stories.SlugExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = slug.WithSuffix(base, n)
	}
}

// loadDraft parses the draft id and loads the draft, writing the error
// response itself when something is off.
func (a *Author) loadDraft(w http.ResponseWriter, r *http.Request) (*drafts.Draft, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid draft id.")
		return nil, false
	}

	d, err := a.drafts.Get(r.Context(), id)
	if err != nil {
		slog.Error("draft load failed", "error", err, "draft", id)
		writeError(w, http.StatusInternalServerError, "Could not load the draft.")
		return nil, false
	}
	if d == nil {
		writeError(w, http.StatusNotFound, "Draft not found or expired.")
		return nil, false
	}
	return d, true
}

// loadDraftCaption loads the draft plus a bounds-checked caption index and
// requires the caption-editing phase.
func (a *Author) loadDraftCaption(w http.ResponseWriter, r *http.Request) (*drafts.Draft, int, bool) {
	d, ok := a.loadDraft(w, r)
	if !ok {
		return nil, 0, false
	}
	if d.Selection.Phase != selection.PhaseCaptionEditing {
		writeError(w, http.StatusConflict, "Captions can only be edited in the caption phase.")
		return nil, 0, false
	}

	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || idx < 0 || idx >= len(d.Captions) {
		writeError(w, http.StatusUnprocessableEntity, "Caption index out of range.")
		return nil, 0, false
	}
	return d, idx, true
}

// guardStatus maps state machine guard errors to HTTP statuses. Phase
// mismatches are conflicts; everything else is a plain validation block.
func guardStatus(err error) int {
	if errors.Is(err, selection.ErrWrongPhase) {
		return http.StatusConflict
	}
	return http.StatusUnprocessableEntity
}

// guardMessage turns guard errors into author-facing messages. Guards
// block a transition; they are never surfaced as server faults.
func guardMessage(err error) string {
	switch {
	case errors.Is(err, selection.ErrIsCover):
		return "This image is the cover. Unset it first."
	case errors.Is(err, selection.ErrSlideLimit):
		return "The slide set is full. Remove a slide first."
	case errors.Is(err, selection.ErrMissingCover):
		return "Choose a cover image first."
	case errors.Is(err, selection.ErrSlideCountOutOfRange):
		return "Select a number of slides within the allowed range."
	case errors.Is(err, selection.ErrWrongPhase):
		return "This action is not available in the current phase."
	default:
		return "The action could not be applied."
	}
}
