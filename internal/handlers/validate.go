// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for authoring inputs.
const (
	maxTopicLen      = 200
	maxTitleLen      = 300
	maxSlugLen       = 300
	maxHeadingLen    = 200
	maxSubheadingLen = 500
	maxCTALabelLen   = 100
	maxURLLen        = 2000
	maxTags          = 20
)

// validateDraftRequest checks the inputs for starting a new draft and
// returns the first problem found, or "".
func validateDraftRequest(topic string, min, max int) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "Topic is required."
	}
	if utf8.RuneCountInString(topic) > maxTopicLen {
		return "Topic is too long (max 200 characters)."
	}
	if min < 2 {
		return "Minimum page count must be at least 2 (cover plus one slide)."
	}
	if max < min {
		return "Maximum page count must not be below the minimum."
	}
	return ""
}

// validateCaption checks caption edit inputs.
func validateCaption(heading, subheading, ctaLabel, ctaURL string) string {
	if utf8.RuneCountInString(heading) > maxHeadingLen {
		return "Heading is too long (max 200 characters)."
	}
	if utf8.RuneCountInString(subheading) > maxSubheadingLen {
		return "Subheading is too long (max 500 characters)."
	}
	if utf8.RuneCountInString(ctaLabel) > maxCTALabelLen {
		return "CTA label is too long (max 100 characters)."
	}
	if utf8.RuneCountInString(ctaURL) > maxURLLen {
		return "CTA URL is too long."
	}
	return ""
}

// validatePublishRequest checks publish-time metadata.
func validatePublishRequest(title, slugValue string, tags []string) string {
	if strings.TrimSpace(title) == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(slugValue) > maxSlugLen {
		return "Slug is too long (max 300 characters)."
	}
	if len(tags) > maxTags {
		return "Too many tags (max 20)."
	}
	return ""
}
