// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package player renders the client-side interactive story player. Layout
// is decided entirely by the story's resolved template key; pages are a
// vertical sequence of full-bleed slides. The full-screen interstitial ad
// is session-throttled through the SessionFlags capability so it appears
// at most once per story per browsing session.
package player

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"storypress/internal/models"
	"storypress/internal/templates"
)

//go:embed player.html.tmpl
var playerTmpl string

// InterstitialDelayMS is how long after open the interstitial is armed.
const InterstitialDelayMS = 3000

// Options carries per-request rendering switches.
type Options struct {
	// ShowInterstitial arms the full-screen ad overlay for this render.
	// The caller decides via SessionFlags; the renderer only draws it.
	ShowInterstitial bool
	// AdClient is the interstitial ad network identifier. Empty disables
	// the overlay even when ShowInterstitial is set.
	AdClient string
}

// Renderer compiles the player page template once and renders story
// documents against it. Safe for concurrent use: rendering shares no
// mutable state.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded player template.
func New() (*Renderer, error) {
	t, err := template.New("player").Parse(playerTmpl)
	if err != nil {
		return nil, fmt.Errorf("player template: %w", err)
	}
	return &Renderer{tmpl: t}, nil
}

type pageView struct {
	Index      int
	Kind       models.CaptionKind
	Heading    string
	Subheading string
	CTAURL     string
	CTALabel   string
	ImageURL   string
	PosClass   string
	ToneClass  string
}

type interstitialView struct {
	AdClient string
	DelayMS  int
}

type view struct {
	Title        string
	Publisher    string
	TemplateKey  models.TemplateKey
	Style        templates.Style
	Pages        []pageView
	Interstitial *interstitialView
}

// Render produces the complete player HTML for a story. The template key
// stored on the document takes precedence; documents that predate
// persisted-template support fall back to deterministic assignment.
func (r *Renderer) Render(doc *models.StoryDocument, opts Options) ([]byte, error) {
	key := templates.Assign(doc.Slug, doc.Tags, doc.Template)
	style, _ := templates.StyleFor(key)

	v := view{
		Title:       doc.Title,
		Publisher:   doc.Publisher,
		TemplateKey: key,
		Style:       style,
	}

	for i, p := range doc.Pages {
		pos, tone := overlayClasses(p.Overlay)
		v.Pages = append(v.Pages, pageView{
			Index:      i,
			Kind:       p.Kind,
			Heading:    p.Heading,
			Subheading: p.Subheading,
			CTAURL:     p.CTAURL,
			CTALabel:   p.CTALabel,
			ImageURL:   p.BackgroundImageURL,
			PosClass:   pos,
			ToneClass:  tone,
		})
	}

	if opts.ShowInterstitial && opts.AdClient != "" {
		v.Interstitial = &interstitialView{
			AdClient: opts.AdClient,
			DelayMS:  InterstitialDelayMS,
		}
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("render player: %w", err)
	}
	return buf.Bytes(), nil
}

func overlayClasses(ov *models.Overlay) (pos, tone string) {
	pos, tone = "pos-bottom", "tone-dark"
	if ov == nil {
		return pos, tone
	}
	switch ov.Position {
	case models.OverlayTop:
		pos = "pos-top"
	case models.OverlayCenter:
		pos = "pos-center"
	}
	if ov.Tone == models.ToneLight {
		tone = "tone-light"
	}
	return pos, tone
}
