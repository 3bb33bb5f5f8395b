// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package amp compiles a StoryDocument into a complete, standards-conformant
// AMP story document. Compile is a pure function: identical document and
// configuration produce byte-identical output — no timestamps, no random
// ids. Malformed-but-present data is escaped and rendered as-is; the
// compiler itself never fails.
package amp

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"storypress/internal/models"
	"storypress/internal/templates"
)

// Config carries the deployment-level switches the compiler consumes. Both
// identifiers are opaque; only their presence matters. An empty AdSlot
// means no ad markup at all is emitted, not an empty placeholder, and the
// same holds for AnalyticsID.
type Config struct {
	AdSlot      string // ad network slot for amp-story-auto-ads
	AnalyticsID string // measurement id for amp-analytics
}

// Compile renders the full AMP story markup for a document. The template
// is the stored key when valid, otherwise re-derived deterministically from
// the document's slug and tags.
func Compile(doc *models.StoryDocument, cfg Config) string {
	key := templates.Assign(doc.Slug, doc.Tags, doc.Template)
	style, _ := templates.StyleFor(key)

	var b strings.Builder
	b.Grow(8192)

	writeHead(&b, doc, style, cfg)

	b.WriteString("<body>\n")
	b.WriteString(`<amp-story standalone title="` + esc(doc.Title) + `"`)
	b.WriteString(` publisher="` + esc(doc.Publisher) + `"`)
	if doc.PublisherLogo != "" {
		b.WriteString(` publisher-logo-src="` + esc(doc.PublisherLogo) + `"`)
	}
	if doc.PosterImage != "" {
		b.WriteString(` poster-portrait-src="` + esc(doc.PosterImage) + `"`)
	}
	b.WriteString(">\n")

	if cfg.AdSlot != "" {
		writeAutoAds(&b, cfg.AdSlot)
	}

	for i, page := range doc.Pages {
		writePage(&b, i, page)
	}

	if cfg.AnalyticsID != "" {
		writeAnalytics(&b, cfg.AnalyticsID)
	}

	b.WriteString("</amp-story>\n</body>\n</html>\n")
	return b.String()
}

// esc escapes the five markup-unsafe characters (< > & " ') for safe
// interpolation into text and attribute positions.
func esc(s string) string {
	return html.EscapeString(s)
}

func writeHead(b *strings.Builder, doc *models.StoryDocument, style templates.Style, cfg Config) {
	b.WriteString("<!DOCTYPE html>\n<html amp lang=\"en\">\n<head>\n")
	b.WriteString(`<meta charset="utf-8">` + "\n")
	b.WriteString(`<meta name="viewport" content="width=device-width,minimum-scale=1,initial-scale=1">` + "\n")
	b.WriteString("<title>" + esc(doc.Title) + "</title>\n")
	if doc.CanonicalURL != "" {
		b.WriteString(`<link rel="canonical" href="` + esc(doc.CanonicalURL) + `">` + "\n")
	}
	b.WriteString(`<script async src="https://cdn.ampproject.org/v0.js"></script>` + "\n")
	b.WriteString(`<script async custom-element="amp-story" src="https://cdn.ampproject.org/v0/amp-story-1.0.js"></script>` + "\n")
	if cfg.AdSlot != "" {
		b.WriteString(`<script async custom-element="amp-story-auto-ads" src="https://cdn.ampproject.org/v0/amp-story-auto-ads-0.1.js"></script>` + "\n")
	}
	if cfg.AnalyticsID != "" {
		b.WriteString(`<script async custom-element="amp-analytics" src="https://cdn.ampproject.org/v0/amp-analytics-0.1.js"></script>` + "\n")
	}
	b.WriteString(`<style amp-boilerplate>body{-webkit-animation:-amp-start 8s steps(1,end) 0s 1 normal both;-moz-animation:-amp-start 8s steps(1,end) 0s 1 normal both;-ms-animation:-amp-start 8s steps(1,end) 0s 1 normal both;animation:-amp-start 8s steps(1,end) 0s 1 normal both}@-webkit-keyframes -amp-start{from{visibility:hidden}to{visibility:visible}}@-moz-keyframes -amp-start{from{visibility:hidden}to{visibility:visible}}@-ms-keyframes -amp-start{from{visibility:hidden}to{visibility:visible}}@-o-keyframes -amp-start{from{visibility:hidden}to{visibility:visible}}@keyframes -amp-start{from{visibility:hidden}to{visibility:visible}}</style><noscript><style amp-boilerplate>body{-webkit-animation:none;-moz-animation:none;-ms-animation:none;animation:none}</style></noscript>` + "\n")
	writeThemeCSS(b, style)
	b.WriteString("</head>\n")
}

// writeThemeCSS emits the amp-custom stylesheet derived from the resolved
// template's style contract. Text layer positioning and scrim tones are
// class-based so pages only carry class names.
func writeThemeCSS(b *strings.Builder, style templates.Style) {
	b.WriteString("<style amp-custom>\n")
	fmt.Fprintf(b, "amp-story{font-family:%s}\n", style.FontStack)
	fmt.Fprintf(b, "h1{font-weight:%d;font-size:%.2fem;margin:0}\n", style.HeadingWeight, 1.8*style.HeadingScale)
	b.WriteString("p{margin:0.4em 0 0;font-size:1em}\n")
	fmt.Fprintf(b, "a.cta{color:%s}\n", style.AccentColor)
	b.WriteString(".text-layer{padding:24px}\n")
	b.WriteString(".pos-top{justify-content:start}\n.pos-center{justify-content:center}\n.pos-bottom{justify-content:end}\n")
	fmt.Fprintf(b, ".tone-dark .box{background:%s;color:%s}\n", style.OverlayDark, style.TextDark)
	fmt.Fprintf(b, ".tone-light .box{background:%s;color:%s}\n", style.OverlayLight, style.TextLight)
	switch style.Box {
	case templates.BoxOpaque:
		b.WriteString(".box{padding:16px;border-radius:4px}\n")
	case templates.BoxTranslucent:
		b.WriteString(".box{padding:16px;border-radius:8px;backdrop-filter:blur(2px)}\n")
	case templates.BoxBordered:
		fmt.Fprintf(b, ".box{padding:16px;border:2px solid %s}\n", style.AccentColor)
	case templates.BoxNone:
		b.WriteString(".box{background:none !important;padding:0}\n")
	}
	b.WriteString("</style>\n")
}

// writeAutoAds emits the single document-level ad block. The slot value is
// carried inside a JSON island, so it is JSON-encoded rather than
// attribute-escaped.
func writeAutoAds(b *strings.Builder, adSlot string) {
	slot, _ := json.Marshal(adSlot)
	b.WriteString("<amp-story-auto-ads>\n")
	b.WriteString(`<script type="application/json">{"ad-attributes":{"type":"doubleclick","data-slot":` + string(slot) + `}}</script>` + "\n")
	b.WriteString("</amp-story-auto-ads>\n")
}

func writeAnalytics(b *strings.Builder, measurementID string) {
	id, _ := json.Marshal(measurementID)
	b.WriteString(`<amp-analytics type="gtag" data-credentials="include">` + "\n")
	b.WriteString(`<script type="application/json">{"vars":{"gtag_id":` + string(id) + `,"config":{` + string(id) + `:{"groups":"default"}}}}</script>` + "\n")
	b.WriteString("</amp-analytics>\n")
}

// writePage emits one amp-story-page: a full-bleed media layer plus a text
// layer positioned and toned by the caption's overlay. Page ids derive from
// the index so output stays deterministic.
func writePage(b *strings.Builder, index int, page models.StoryPage) {
	pos, tone := overlayClasses(page.Overlay)

	fmt.Fprintf(b, `<amp-story-page id="page-%d">`+"\n", index+1)

	b.WriteString(`<amp-story-grid-layer template="fill">` + "\n")
	fmt.Fprintf(b, `<amp-img src="%s" layout="fill" alt="%s"></amp-img>`+"\n", esc(page.BackgroundImageURL), esc(page.Heading))
	b.WriteString("</amp-story-grid-layer>\n")

	fmt.Fprintf(b, `<amp-story-grid-layer template="vertical" class="text-layer %s %s">`+"\n", pos, tone)
	b.WriteString(`<div class="box">` + "\n")
	b.WriteString("<h1>" + esc(page.Heading) + "</h1>\n")
	if page.Subheading != "" {
		b.WriteString("<p>" + esc(page.Subheading) + "</p>\n")
	}
	b.WriteString("</div>\n")
	b.WriteString("</amp-story-grid-layer>\n")

	if page.Kind == models.CaptionKindCTA && page.CTAURL != "" {
		label := page.CTALabel
		if label == "" {
			label = "Learn more"
		}
		b.WriteString(`<amp-story-page-outlink layout="nodisplay">` + "\n")
		fmt.Fprintf(b, `<a href="%s" class="cta">%s</a>`+"\n", esc(page.CTAURL), esc(label))
		b.WriteString("</amp-story-page-outlink>\n")
	}

	b.WriteString("</amp-story-page>\n")
}

// overlayClasses maps an overlay to its CSS classes, defaulting to a dark
// bottom scrim when unset or partially set.
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
	case models.OverlayBottom:
		pos = "pos-bottom"
	}
	if ov.Tone == models.ToneLight {
		tone = "tone-light"
	}
	return pos, tone
}
