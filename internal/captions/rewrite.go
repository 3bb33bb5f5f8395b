// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package captions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"storypress/internal/models"
)

// Generator is the slice of the AI registry the rewriter needs.
// *ai.Registry satisfies it; tests inject fakes.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Hints carries the story-level context sent along with a single caption.
type Hints struct {
	Title     string // working title of the story
	Tone      string // tone/objective guidance, e.g. from the pool's aiPrompts
	Objective string
}

// Rewriter sends one caption at a time to the active LLM provider and
// merges the reply back. It never touches any other slide: a failed call
// returns the error and the caller keeps the prior caption.
type Rewriter struct {
	gen Generator
}

// NewRewriter creates a rewriter backed by the given generator.
func NewRewriter(gen Generator) *Rewriter {
	return &Rewriter{gen: gen}
}

const rewriteSystemPrompt = `You rewrite a single caption of a visual web story.

Rules:
- Reply with ONLY a JSON object, no code fences, no commentary.
- Shape: {"heading": "...", "subheading": "...", "cta_label": "..."}
- heading: max 40 characters, punchy, matches the requested tone.
- subheading: max 90 characters, may be empty.
- cta_label: only for call-to-action slides, max 25 characters, else empty.
- Keep the language of the original caption.`

// RewriteOne rewrites a single caption. On success the returned caption is
// the input with the model's non-empty fields merged in; kind, overlay and
// target URL are never changed by the model. On any failure the input is
// returned unchanged along with the error.
func (rw *Rewriter) RewriteOne(ctx context.Context, hints Hints, c models.SlideCaption) (models.SlideCaption, error) {
	user := fmt.Sprintf(
		"Story title: %s\nTone: %s\nObjective: %s\nSlide kind: %s\nCurrent heading: %s\nCurrent subheading: %s\nCurrent CTA label: %s",
		hints.Title, hints.Tone, hints.Objective, c.Kind, c.Heading, c.Subheading, c.CTALabel,
	)

	raw, err := rw.gen.Generate(ctx, rewriteSystemPrompt, user)
	if err != nil {
		return c, fmt.Errorf("caption rewrite: %w", err)
	}

	var reply struct {
		Heading    string `json:"heading"`
		Subheading string `json:"subheading"`
		CTALabel   string `json:"cta_label"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &reply); err != nil {
		return c, fmt.Errorf("caption rewrite: unparseable reply: %w", err)
	}

	if reply.Heading != "" {
		c.Heading = reply.Heading
	}
	if reply.Subheading != "" {
		c.Subheading = reply.Subheading
	}
	if reply.CTALabel != "" && c.Kind == models.CaptionKindCTA {
		c.CTALabel = reply.CTALabel
	}
	return c, nil
}

// stripFences removes a Markdown code fence wrapper that some models add
// despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
