// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package captions reconciles partially-specified caption data against a
// story's final image sequence and exposes the per-slide AI rewrite.
package captions

import (
	"fmt"

	"storypress/internal/models"
)

// defaultOverlay is applied to synthesized placeholders. Editors can change
// position and tone per slide afterwards.
var defaultOverlay = models.Overlay{Position: models.OverlayBottom, Tone: models.ToneDark}

// Reconcile produces exactly need captions for the final ordered sequence
// [cover, slides...]. A supplied list at least need long is truncated. A
// shorter one is overlaid positionally onto a full placeholder scaffold, so
// real data survives and only missing slots fall back to placeholders.
func Reconcile(title string, supplied []models.SlideCaption, need int) []models.SlideCaption {
	if need <= 0 {
		return nil
	}

	if len(supplied) >= need {
		out := make([]models.SlideCaption, need)
		copy(out, supplied[:need])
		return out
	}

	out := placeholders(title, need)
	for i, c := range supplied {
		out[i] = merge(out[i], c)
	}
	return out
}

// placeholders builds the full synthetic sequence: index 0 is the cover
// carrying the working title, the last index is a generic CTA, and every
// interior index is a numbered content slide. With need == 1 only the cover
// exists; with need == 2 the second slide is the CTA.
func placeholders(title string, need int) []models.SlideCaption {
	out := make([]models.SlideCaption, need)

	heading := title
	if heading == "" {
		heading = "Untitled story"
	}

	for i := range out {
		ov := defaultOverlay
		switch {
		case i == 0:
			out[i] = models.SlideCaption{
				Kind:    models.CaptionKindCover,
				Heading: heading,
				Overlay: &ov,
			}
		case i == need-1:
			out[i] = models.SlideCaption{
				Kind:     models.CaptionKindCTA,
				Heading:  "Want to know more?",
				CTALabel: "Learn more",
				CTAURL:   "/",
				Overlay:  &ov,
			}
		default:
			out[i] = models.SlideCaption{
				Kind:    models.CaptionKindContent,
				Heading: fmt.Sprintf("Slide %d", i),
				Overlay: &ov,
			}
		}
	}
	return out
}

// merge shallow-merges a supplied caption onto a placeholder. Non-zero
// supplied fields win; zero fields keep the placeholder value.
func merge(base, over models.SlideCaption) models.SlideCaption {
	if over.ID != "" {
		base.ID = over.ID
	}
	if over.Kind != "" {
		base.Kind = over.Kind
	}
	if over.Heading != "" {
		base.Heading = over.Heading
	}
	if over.Subheading != "" {
		base.Subheading = over.Subheading
	}
	if over.CTAURL != "" {
		base.CTAURL = over.CTAURL
	}
	if over.CTALabel != "" {
		base.CTALabel = over.CTALabel
	}
	if over.Overlay != nil {
		ov := *over.Overlay
		base.Overlay = &ov
	}
	return base
}
