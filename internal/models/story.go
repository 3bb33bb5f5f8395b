// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// TemplateKey identifies one of the closed set of visual presentation
// themes. Every published story either stores an explicit key or relies on
// deterministic assignment, which is computed once and frozen at publish.
type TemplateKey string

const (
	TemplateClassic   TemplateKey = "classic"
	TemplateBold      TemplateKey = "bold"
	TemplateEditorial TemplateKey = "editorial"
	TemplateVivid     TemplateKey = "vivid"
	TemplateMinimal   TemplateKey = "minimal"
	TemplateMono      TemplateKey = "mono"
)

// CaptionKind distinguishes the three roles a story page can play.
type CaptionKind string

const (
	CaptionKindCover   CaptionKind = "cover"
	CaptionKindContent CaptionKind = "content"
	CaptionKindCTA     CaptionKind = "cta"
)

// OverlayPosition places the text layer on a slide.
type OverlayPosition string

const (
	OverlayTop    OverlayPosition = "top"
	OverlayCenter OverlayPosition = "center"
	OverlayBottom OverlayPosition = "bottom"
)

// OverlayTone selects the scrim palette behind the text layer.
type OverlayTone string

const (
	ToneDark  OverlayTone = "dark"
	ToneLight OverlayTone = "light"
)

// Overlay describes where and how a slide's text layer is drawn.
type Overlay struct {
	Position OverlayPosition `json:"position"`
	Tone     OverlayTone     `json:"tone"`
}

// SlideCaption is the text content of one story page, ordered to match the
// final image sequence (cover first, then content slides, then an optional
// closing CTA slide).
type SlideCaption struct {
	ID         string      `json:"id"`
	Kind       CaptionKind `json:"kind"`
	Heading    string      `json:"heading"`
	Subheading string      `json:"subheading,omitempty"`
	CTAURL     string      `json:"cta_url,omitempty"`
	CTALabel   string      `json:"cta_label,omitempty"`
	Overlay    *Overlay    `json:"overlay,omitempty"`
}

// StoryPage is a caption bound to its background image. This is what gets
// persisted in the pages column and consumed by both renderers.
type StoryPage struct {
	SlideCaption
	BackgroundImageURL string `json:"background_image_url"`
}

// StoryDocument is the persisted, renderer-agnostic representation of a
// finished story. Immutable once stored except through a full re-publish.
type StoryDocument struct {
	ID            uuid.UUID   `json:"id"`
	Slug          string      `json:"slug"`
	Title         string      `json:"title"`
	Tags          []string    `json:"tags"`
	Template      TemplateKey `json:"template,omitempty"` // empty = assign at render time
	Publisher     string      `json:"publisher"`
	PublisherLogo string      `json:"publisher_logo,omitempty"`
	PosterImage   string      `json:"poster_image,omitempty"`
	CanonicalURL  string      `json:"canonical_url,omitempty"`
	Pages         []StoryPage `json:"pages"`
	Revision      int         `json:"revision"`
	PublishedAt   *time.Time  `json:"published_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
