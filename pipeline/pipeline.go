// Package pipeline wires the external collaborators of a video pass, the
// plate detection and OCR models, to the per-frame record store.  Models
// are constructed once by the caller and injected, never re-initialized
// per frame or reached through ambient global state.
package pipeline

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/AhmedTolbh/CarCheacks/plate"
	"github.com/AhmedTolbh/CarCheacks/tracker"
)

// ErrNoModels is returned by ProcessFrame when no plate detector and
// reader were attached, for example in replay drivers that only feed
// pre-computed readings through ProcessReadings
var ErrNoModels = errors.New("no plate detector and reader attached")

// Detection is a license plate located by the plate detection model in a
// full video frame
type Detection struct {
	// Box is the plate bounding box in frame coordinates
	Box tracker.Rect
	// Score is the detection confidence in [0,1]
	Score float64
}

// PlateDetector locates license plates in a full video frame.  It is an
// external collaborator, typically a YOLO model trained on plates.
type PlateDetector interface {
	Detect(img gocv.Mat) ([]Detection, error)
}

// PlateReader reads the characters off a cropped plate region.  It is an
// external collaborator, typically an LPRNet or general OCR model.
type PlateReader interface {
	Read(crop gocv.Mat) (text string, score float64, err error)
}

// Reading is one plate detection with its raw recognized text, the tuple
// an external detector and OCR stage produce for a single plate per frame
type Reading struct {
	// Box is the plate bounding box in frame coordinates
	Box tracker.Rect
	// Score is the plate detection confidence in [0,1]
	Score float64
	// RawText is the uncorrected recognized text, empty when the plate was
	// not legible
	RawText string
	// TextScore is the OCR confidence in [0,1]
	TextScore float64
}

// Pipeline runs the per-frame detection, association and canonicalization
// step for one video pass and appends the results to its record store
type Pipeline struct {
	// detector is the injected plate detection model
	detector PlateDetector
	// reader is the injected OCR model
	reader PlateReader
	// canon validates and corrects recognized text
	canon *plate.Canonicalizer
	// store is the append-only per-frame record store for this pass
	store *tracker.Store
}

// New returns a Pipeline for one video pass using the given text
// canonicalizer.  Attach the detection and OCR models with AttachModels
// before calling ProcessFrame; replay drivers working from pre-computed
// detections can skip that and call ProcessReadings directly.
func New(canon *plate.Canonicalizer) *Pipeline {
	return &Pipeline{
		canon: canon,
		store: tracker.NewStore(),
	}
}

// AttachModels injects the plate detection and OCR models.  Call once at
// startup, the pipeline holds the references for the whole pass.
func (p *Pipeline) AttachModels(detector PlateDetector, reader PlateReader) {
	p.detector = detector
	p.reader = reader
}

// Store returns the record store accumulated so far
func (p *Pipeline) Store() *tracker.Store {
	return p.store
}

// Observations returns all retained observations ordered by track id then
// frame number, the input expected by tracker.Reconstruct
func (p *Pipeline) Observations() []tracker.Observation {
	return p.store.Observations()
}

// ProcessFrame runs the attached models over one frame and records the
// results against the tracked cars reported for that frame.  Each plate
// found is cropped out of the frame and read before being handed to
// ProcessReadings.
func (p *Pipeline) ProcessFrame(frameNmr int, img gocv.Mat, cars []tracker.Candidate) error {
	if p.detector == nil || p.reader == nil {
		return ErrNoModels
	}

	detections, err := p.detector.Detect(img)

	if err != nil {
		return fmt.Errorf("plate detection failed on frame %d: %w", frameNmr, err)
	}

	readings := make([]Reading, 0, len(detections))

	for _, det := range detections {
		reading := Reading{
			Box:   det.Box,
			Score: det.Score,
		}

		crop := img.Region(cropRegion(det.Box, img.Cols(), img.Rows()))

		text, score, err := p.reader.Read(crop)

		closeErr := crop.Close()

		if err != nil {
			return fmt.Errorf("plate read failed on frame %d: %w", frameNmr, err)
		}

		if closeErr != nil {
			return fmt.Errorf("closing plate crop on frame %d: %w", frameNmr, closeErr)
		}

		reading.RawText = text
		reading.TextScore = score

		readings = append(readings, reading)
	}

	return p.ProcessReadings(frameNmr, cars, readings)
}

// ProcessReadings records one frame worth of tracked cars and plate
// readings.  Every tracked car gets an observation row; a reading is
// attached to the unique car containing it, readings contained by no car
// are dropped and recognized text failing canonicalization is dropped to
// an empty text field.  Both outcomes are routine and absorbed silently.
func (p *Pipeline) ProcessReadings(frameNmr int, cars []tracker.Candidate, readings []Reading) error {
	observations := make(map[int]*tracker.Observation, len(cars))

	for _, car := range cars {
		observations[car.TrackID] = &tracker.Observation{
			FrameNmr: frameNmr,
			TrackID:  car.TrackID,
			CarBox:   car.Box,
		}
	}

	for _, reading := range readings {
		id, ok := tracker.Associate(reading.Box, cars)

		if !ok {
			continue
		}

		o := observations[id]

		// a later reading for the same car replaces the earlier one,
		// matching the store's last-wins duplicate key contract
		box := reading.Box
		o.PlateBox = &box
		o.PlateScore = reading.Score
		o.Text = ""
		o.TextScore = 0

		if text, ok := p.canon.Canonicalize(reading.RawText); ok {
			o.Text = text
			o.TextScore = reading.TextScore
		}
	}

	// append in caller order so deterministic input keeps the store
	// deterministic
	for _, car := range cars {
		if err := p.store.Append(*observations[car.TrackID]); err != nil {
			return fmt.Errorf("recording frame %d track %d: %w", frameNmr, car.TrackID, err)
		}
	}

	return nil
}

// cropRegion converts a plate box to an image rectangle clamped to the
// frame bounds for cropping
func cropRegion(box tracker.Rect, cols, rows int) image.Rectangle {
	rect := image.Rect(int(box.X1()), int(box.Y1()), int(box.X2()), int(box.Y2()))

	return rect.Intersect(image.Rect(0, 0, cols, rows))
}
