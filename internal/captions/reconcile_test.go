// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package captions

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"storypress/internal/models"
)

func TestReconcileTruncates(t *testing.T) {
	supplied := []models.SlideCaption{
		{Kind: models.CaptionKindCover, Heading: "One"},
		{Kind: models.CaptionKindContent, Heading: "Two"},
		{Kind: models.CaptionKindContent, Heading: "Three"},
		{Kind: models.CaptionKindCTA, Heading: "Four"},
	}

	got := Reconcile("Title", supplied, 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Heading != "One" || got[1].Heading != "Two" {
		t.Errorf("truncation kept wrong captions: %+v", got)
	}
}

func TestReconcilePlaceholdersFromNothing(t *testing.T) {
	got := Reconcile("Card benefits", nil, 4)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}

	if got[0].Kind != models.CaptionKindCover || got[0].Heading != "Card benefits" {
		t.Errorf("cover placeholder = %+v", got[0])
	}
	for i := 1; i < 3; i++ {
		if got[i].Kind != models.CaptionKindContent {
			t.Errorf("index %d kind = %q, want content", i, got[i].Kind)
		}
		if got[i].Heading == "" {
			t.Errorf("index %d has empty heading", i)
		}
	}
	last := got[3]
	if last.Kind != models.CaptionKindCTA || last.CTALabel == "" || last.CTAURL == "" {
		t.Errorf("CTA placeholder = %+v", last)
	}

	for i, c := range got {
		if c.Overlay == nil {
			t.Errorf("index %d missing default overlay", i)
			continue
		}
		if c.Overlay.Position != models.OverlayBottom || c.Overlay.Tone != models.ToneDark {
			t.Errorf("index %d overlay = %+v, want bottom/dark", i, *c.Overlay)
		}
	}
}

func TestReconcileEmptyTitle(t *testing.T) {
	got := Reconcile("", nil, 2)
	if got[0].Heading != "Untitled story" {
		t.Errorf("cover heading = %q, want %q", got[0].Heading, "Untitled story")
	}
}

func TestReconcilePositionalMerge(t *testing.T) {
	supplied := []models.SlideCaption{
		{Heading: "Real cover", Subheading: "From the pool"},
		{Heading: "Real slide"},
	}

	got := Reconcile("Title", supplied, 4)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}

	// Supplied non-zero fields win; missing fields keep the placeholder.
	if got[0].Heading != "Real cover" || got[0].Subheading != "From the pool" {
		t.Errorf("merged cover = %+v", got[0])
	}
	if got[0].Kind != models.CaptionKindCover {
		t.Errorf("cover kind = %q, want cover (from placeholder)", got[0].Kind)
	}
	if got[1].Heading != "Real slide" || got[1].Kind != models.CaptionKindContent {
		t.Errorf("merged slide = %+v", got[1])
	}
	if got[3].Kind != models.CaptionKindCTA {
		t.Errorf("last kind = %q, want cta", got[3].Kind)
	}
}

func TestReconcileMergeOverlay(t *testing.T) {
	supplied := []models.SlideCaption{
		{Heading: "Cover", Overlay: &models.Overlay{Position: models.OverlayTop, Tone: models.ToneLight}},
	}

	got := Reconcile("Title", supplied, 2)
	want := models.Overlay{Position: models.OverlayTop, Tone: models.ToneLight}
	if got[0].Overlay == nil {
		t.Fatal("merged overlay is nil")
	}
	if diff := cmp.Diff(want, *got[0].Overlay); diff != "" {
		t.Errorf("overlay mismatch (-want +got):\n%s", diff)
	}

	// The merged overlay must not alias the supplied one.
	supplied[0].Overlay.Position = models.OverlayCenter
	if got[0].Overlay.Position != models.OverlayTop {
		t.Error("merged overlay aliases the supplied overlay")
	}
}

func TestReconcileEdgeCounts(t *testing.T) {
	if got := Reconcile("Title", nil, 0); got != nil {
		t.Errorf("need=0: got %v, want nil", got)
	}

	// Single page: just the cover, no CTA.
	got := Reconcile("Title", nil, 1)
	if len(got) != 1 || got[0].Kind != models.CaptionKindCover {
		t.Errorf("need=1: %+v", got)
	}

	// Two pages: cover then CTA.
	got = Reconcile("Title", nil, 2)
	if got[1].Kind != models.CaptionKindCTA {
		t.Errorf("need=2 last kind = %q, want cta", got[1].Kind)
	}
}
