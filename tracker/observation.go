package tracker

import (
	"errors"
	"fmt"
)

// ErrMalformedObservation is returned when an upstream collaborator hands
// over an Observation that violates the store contract, such as recognized
// text without a plate box.  It signals a bug in the collaborator, not a
// data quality issue, so the whole pass is aborted rather than repaired.
var ErrMalformedObservation = errors.New("malformed observation")

// Observation is one recorded detection for one tracked car at one frame.
// The car box and track id come from the external tracker, the plate box
// from the plate detector and the text from OCR after canonicalization.
type Observation struct {
	// FrameNmr is the zero-based frame number the observation was made at
	FrameNmr int
	// TrackID is the persistent car identity assigned by the external
	// tracker, positive and stable across a contiguous tracked span
	TrackID int
	// CarBox is the car bounding box reported by the tracker
	CarBox Rect
	// PlateBox is the license plate bounding box, nil when no plate was
	// detected and associated with this car in this frame
	PlateBox *Rect
	// PlateScore is the plate detection confidence in [0,1], meaningful
	// only when PlateBox is set
	PlateScore float64
	// Text is the canonicalized plate number, empty when the plate was not
	// legible or the recognized text failed grammar validation
	Text string
	// TextScore is the OCR confidence in [0,1], meaningful only when Text
	// is set
	TextScore float64
}

// Validate checks the structural invariants an upstream collaborator must
// satisfy before an Observation enters the record store
func (o *Observation) Validate() error {
	if o.FrameNmr < 0 {
		return fmt.Errorf("%w: negative frame number %d", ErrMalformedObservation, o.FrameNmr)
	}

	if o.TrackID <= 0 {
		return fmt.Errorf("%w: track id %d must be positive", ErrMalformedObservation, o.TrackID)
	}

	// a legible plate implies a localized plate, never the other way round
	if o.Text != "" && o.PlateBox == nil {
		return fmt.Errorf("%w: text %q present without plate box", ErrMalformedObservation, o.Text)
	}

	return nil
}

// Candidate pairs a tracked car identity with its bounding box for one
// frame, the unit the containment associator selects between
type Candidate struct {
	TrackID int
	Box     Rect
}

// Record is one row of the reconstructed per-track table.  For frames the
// pipeline observed directly it carries the Observation unchanged, for
// filled gaps it carries interpolated boxes, zeroed scores and no text.
type Record struct {
	Observation
	// Interpolated marks boxes synthesized by gap reconstruction rather
	// than observed from a model
	Interpolated bool
}
