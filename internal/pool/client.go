// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pool fetches image candidates for a story topic from the
// external webhook proxy. The pool is consumed, never implemented, here:
// this client only speaks the request/response contract and maps upstream
// failures onto the workflow's error taxonomy. There is no retry; the
// author re-triggers the fetch explicitly.
package pool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"storypress/internal/models"
)

var (
	// ErrFetchFailed wraps network/transport failures.
	ErrFetchFailed = errors.New("pool: candidate fetch failed")
	// ErrInvalidResponse marks an unparseable or malformed upstream payload.
	ErrInvalidResponse = errors.New("pool: invalid candidate response")
	// ErrInsufficientImages means the pool returned fewer candidates than
	// the workflow floor (cover + minimum slide count) requires.
	ErrInsufficientImages = errors.New("pool: not enough image candidates")
)

// Result is a successful candidate pool response.
type Result struct {
	Images      []models.ImageCandidate `json:"images"`
	Constraints models.Constraints      `json:"constraints"`
	Meta        models.PoolMeta         `json:"meta"`
}

// Client calls the candidate webhook.
type Client struct {
	url    string
	client *http.Client
}

// New creates a pool client for the given webhook URL.
func New(url string) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type fetchRequest struct {
	Topic string `json:"topic"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
}

// Fetch requests candidates for a topic with the desired inclusive
// total-page bounds (counting the cover). It validates that the response
// carries enough images to satisfy the floor of the derived slide bounds.
func (c *Client) Fetch(ctx context.Context, topic string, min, max int) (*Result, error) {
	payload, err := json.Marshal(fetchRequest{Topic: topic, Min: min, Max: max})
	if err != nil {
		return nil, fmt.Errorf("pool marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("pool request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrFetchFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(result.Images) == 0 {
		return nil, fmt.Errorf("%w: no images", ErrInvalidResponse)
	}

	// Fall back to the requested bounds when the pool omits constraints.
	if result.Constraints.Min == 0 && result.Constraints.Max == 0 {
		result.Constraints = models.Constraints{Min: min, Max: max}
	}

	lo, _ := result.Constraints.SlideBounds()
	if len(result.Images) < lo+1 { // cover + minimum slides
		return nil, fmt.Errorf("%w: got %d, need at least %d", ErrInsufficientImages, len(result.Images), lo+1)
	}

	return &result, nil
}
