// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package selection implements the two-phase story authoring state machine:
// picking exactly one cover plus an ordered, bounded set of content slides,
// then editing captions. State is an immutable value; every transition
// returns a new State. Blocked transitions return an error and leave the
// receiver untouched; there is no error state.
package selection

import (
	"errors"
	"slices"
)

// Phase is the workflow position. Publishing is terminal and therefore not
// a Phase: it consumes the state rather than transitioning it.
type Phase string

const (
	PhaseSelecting      Phase = "selecting"
	PhaseCaptionEditing Phase = "caption_editing"
)

var (
	// ErrIsCover rejects selecting the current cover as a content slide.
	ErrIsCover = errors.New("selection: image is the current cover")
	// ErrSlideLimit rejects a toggle-on when the slide set is full.
	ErrSlideLimit = errors.New("selection: slide set is at its maximum size")
	// ErrMissingCover blocks advancing or publishing without a cover.
	ErrMissingCover = errors.New("selection: no cover chosen")
	// ErrSlideCountOutOfRange blocks advancing outside the allowed bounds.
	ErrSlideCountOutOfRange = errors.New("selection: slide count out of range")
	// ErrWrongPhase rejects a transition not defined for the current phase.
	ErrWrongPhase = errors.New("selection: transition not allowed in this phase")
)

// State is the authoring workflow state. Min and Max are the inclusive
// total-page bounds from the candidate pool, counting the cover.
type State struct {
	Phase    Phase    `json:"phase"`
	CoverID  string   `json:"cover_id"`
	SlideIDs []string `json:"slide_ids"`
	Min      int      `json:"min"`
	Max      int      `json:"max"`
}

// New returns a fresh Selecting state with the given total-page bounds.
func New(min, max int) State {
	return State{Phase: PhaseSelecting, Min: min, Max: max}
}

// SlideBounds derives the allowed slide-set size range. The cover takes one
// page, so both bounds shift down by one, floored at 1.
func (s State) SlideBounds() (lo, hi int) {
	lo = s.Min - 1
	if lo < 1 {
		lo = 1
	}
	hi = s.Max - 1
	if hi < 1 {
		hi = 1
	}
	return lo, hi
}

// ToggleCover sets or clears the cover. Choosing an image that is currently
// in the slide set evicts it from there; toggling the current cover clears
// it. Only valid while selecting.
func (s State) ToggleCover(id string) (State, error) {
	if s.Phase != PhaseSelecting {
		return s, ErrWrongPhase
	}
	next := s.clone()
	if next.CoverID == id {
		next.CoverID = ""
		return next, nil
	}
	next.CoverID = id
	if i := slices.Index(next.SlideIDs, id); i >= 0 {
		next.SlideIDs = slices.Delete(next.SlideIDs, i, i+1)
	}
	return next, nil
}

// ToggleSlide adds or removes a content slide. A toggle-off always
// succeeds. A toggle-on is rejected when the image is the current cover or
// the slide set is already at capacity.
func (s State) ToggleSlide(id string) (State, error) {
	if s.Phase != PhaseSelecting {
		return s, ErrWrongPhase
	}
	next := s.clone()
	if i := slices.Index(next.SlideIDs, id); i >= 0 {
		next.SlideIDs = slices.Delete(next.SlideIDs, i, i+1)
		return next, nil
	}
	if id == next.CoverID {
		return s, ErrIsCover
	}
	_, hi := s.SlideBounds()
	if len(next.SlideIDs) >= hi {
		return s, ErrSlideLimit
	}
	next.SlideIDs = append(next.SlideIDs, id)
	return next, nil
}

// CanAdvance reports whether the sole forward transition is enabled:
// exactly one cover set and the slide count within bounds.
func (s State) CanAdvance() bool {
	if s.CoverID == "" {
		return false
	}
	lo, hi := s.SlideBounds()
	n := len(s.SlideIDs)
	return n >= lo && n <= hi
}

// Advance moves from Selecting to CaptionEditing. Guarded by CanAdvance;
// a blocked advance returns the original state unchanged.
func (s State) Advance() (State, error) {
	if s.Phase != PhaseSelecting {
		return s, ErrWrongPhase
	}
	if s.CoverID == "" {
		return s, ErrMissingCover
	}
	if !s.CanAdvance() {
		return s, ErrSlideCountOutOfRange
	}
	next := s.clone()
	next.Phase = PhaseCaptionEditing
	return next, nil
}

// Back returns to Selecting unconditionally. Caption edits made so far are
// kept by the caller; this transition only moves the phase.
func (s State) Back() State {
	next := s.clone()
	next.Phase = PhaseSelecting
	return next
}

// CanPublish reports whether the terminal publish action is allowed: in the
// caption phase, cover set, and slide count at or above the floor.
func (s State) CanPublish() bool {
	if s.Phase != PhaseCaptionEditing || s.CoverID == "" {
		return false
	}
	lo, _ := s.SlideBounds()
	return len(s.SlideIDs) >= lo
}

// FinalSequence is the ordered page image sequence: cover first, then the
// content slides in selection order.
func (s State) FinalSequence() []string {
	if s.CoverID == "" {
		return slices.Clone(s.SlideIDs)
	}
	seq := make([]string, 0, len(s.SlideIDs)+1)
	seq = append(seq, s.CoverID)
	return append(seq, s.SlideIDs...)
}

// clone copies the state including its slide slice, so transitions never
// alias the receiver's backing array.
func (s State) clone() State {
	s.SlideIDs = slices.Clone(s.SlideIDs)
	return s
}
