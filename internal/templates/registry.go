// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package templates holds the closed catalog of visual story themes and the
// deterministic assignment that maps a story to one of them. Both renderers
// consume the same Style contract, so a theme looks identical in the static
// markup document and the client player.
package templates

import "storypress/internal/models"

// BoxTreatment controls how the text layer's container is drawn.
type BoxTreatment string

const (
	BoxOpaque      BoxTreatment = "opaque"
	BoxTranslucent BoxTreatment = "translucent"
	BoxBordered    BoxTreatment = "bordered"
	BoxNone        BoxTreatment = "none"
)

// Style is the presentation contract for one template. All values are
// plain data consumed identically by the static markup compiler and the
// client player renderer.
type Style struct {
	Key           models.TemplateKey
	Label         string
	FontStack     string
	HeadingWeight int
	HeadingScale  float64 // multiplier on the base heading size
	AccentColor   string
	OverlayDark   string // scrim color behind text, dark tone
	OverlayLight  string // scrim color behind text, light tone
	TextDark      string // text color on dark scrim
	TextLight     string // text color on light scrim
	Box           BoxTreatment
}

// catalog is the fixed registry. Order is stable and user-visible (theme
// pickers list them in this order), so append only.
var catalog = []Style{
	{
		Key:           models.TemplateClassic,
		Label:         "Classic",
		FontStack:     `Georgia, 'Times New Roman', serif`,
		HeadingWeight: 700,
		HeadingScale:  1.0,
		AccentColor:   "#1a73e8",
		OverlayDark:   "rgba(0,0,0,0.55)",
		OverlayLight:  "rgba(255,255,255,0.82)",
		TextDark:      "#ffffff",
		TextLight:     "#1f2933",
		Box:           BoxTranslucent,
	},
	{
		Key:           models.TemplateBold,
		Label:         "Bold",
		FontStack:     `'Helvetica Neue', Arial, sans-serif`,
		HeadingWeight: 900,
		HeadingScale:  1.25,
		AccentColor:   "#d93025",
		OverlayDark:   "rgba(10,10,10,0.7)",
		OverlayLight:  "rgba(255,255,255,0.9)",
		TextDark:      "#ffffff",
		TextLight:     "#111111",
		Box:           BoxOpaque,
	},
	{
		Key:           models.TemplateEditorial,
		Label:         "Editorial",
		FontStack:     `'Playfair Display', Georgia, serif`,
		HeadingWeight: 600,
		HeadingScale:  1.1,
		AccentColor:   "#188038",
		OverlayDark:   "rgba(20,24,28,0.6)",
		OverlayLight:  "rgba(250,248,244,0.85)",
		TextDark:      "#f8f8f8",
		TextLight:     "#2d2a26",
		Box:           BoxBordered,
	},
	{
		Key:           models.TemplateVivid,
		Label:         "Vivid",
		FontStack:     `Montserrat, 'Segoe UI', sans-serif`,
		HeadingWeight: 800,
		HeadingScale:  1.15,
		AccentColor:   "#f9ab00",
		OverlayDark:   "rgba(30,0,60,0.55)",
		OverlayLight:  "rgba(255,250,235,0.85)",
		TextDark:      "#fff8e1",
		TextLight:     "#3c2a00",
		Box:           BoxTranslucent,
	},
	{
		Key:           models.TemplateMinimal,
		Label:         "Minimal",
		FontStack:     `Inter, 'Segoe UI', sans-serif`,
		HeadingWeight: 500,
		HeadingScale:  0.9,
		AccentColor:   "#5f6368",
		OverlayDark:   "rgba(0,0,0,0.4)",
		OverlayLight:  "rgba(255,255,255,0.7)",
		TextDark:      "#fafafa",
		TextLight:     "#333333",
		Box:           BoxNone,
	},
	{
		Key:           models.TemplateMono,
		Label:         "Mono",
		FontStack:     `'IBM Plex Mono', 'Courier New', monospace`,
		HeadingWeight: 600,
		HeadingScale:  0.95,
		AccentColor:   "#00897b",
		OverlayDark:   "rgba(0,0,0,0.75)",
		OverlayLight:  "rgba(240,240,240,0.9)",
		TextDark:      "#e0f2f1",
		TextLight:     "#212121",
		Box:           BoxOpaque,
	},
}

// Catalog returns the full registry in stable order.
func Catalog() []Style {
	out := make([]Style, len(catalog))
	copy(out, catalog)
	return out
}

// StyleFor looks up the style contract for a template key.
func StyleFor(key models.TemplateKey) (Style, bool) {
	for _, s := range catalog {
		if s.Key == key {
			return s, true
		}
	}
	return Style{}, false
}

// Valid reports whether key names a registry entry.
func Valid(key models.TemplateKey) bool {
	_, ok := StyleFor(key)
	return ok
}
