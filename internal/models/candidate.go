// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// ImageCandidate is one selectable image supplied by the candidate pool.
// Candidates are immutable once fetched; the selection workflow references
// them by ID and never copies or mutates them.
type ImageCandidate struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
	FullURL  string `json:"full"`
	ThumbURL string `json:"thumb"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Alt      string `json:"alt,omitempty"`
	PageURL  string `json:"pageUrl,omitempty"`
}

// Constraints are the inclusive slide-count bounds delivered with a
// candidate pool response. Min and Max count total pages including the cover.
type Constraints struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// SlideBounds derives the allowed size range for the non-cover slide set.
// The cover occupies one page, so both bounds shift down by one with a
// floor of 1.
func (c Constraints) SlideBounds() (lo, hi int) {
	lo = c.Min - 1
	if lo < 1 {
		lo = 1
	}
	hi = c.Max - 1
	if hi < 1 {
		hi = 1
	}
	return lo, hi
}

// PoolMeta carries optional extras from the candidate pool's generation
// step: a working title, pre-filled captions, and tone/objective hints for
// the AI rewrite capability.
type PoolMeta struct {
	Title     string         `json:"title,omitempty"`
	Slides    []SlideCaption `json:"slides,omitempty"`
	AIPrompts string         `json:"aiPrompts,omitempty"`
}
