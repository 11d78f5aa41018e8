package record

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/AhmedTolbh/CarCheacks/tracker"
)

// TrackSummary aggregates one tracked car over a whole pass: the plate
// number the OCR was most confident about and the sighting statistics
// reporting tools export per vehicle
type TrackSummary struct {
	// TrackID is the car identity the summary covers
	TrackID int
	// Plate is the canonical plate text with the highest OCR confidence
	// seen on this track, empty when no frame was legible
	Plate string
	// FirstFrame and LastFrame bound the observed (not interpolated)
	// appearances of the track
	FirstFrame int
	LastFrame  int
	// Detections counts observed frames for the track
	Detections int
	// Readings counts observed frames that carried legible text
	Readings int
	// BestTextScore is the highest OCR confidence over all readings
	BestTextScore float64
	// AvgTextScore is the mean OCR confidence over all readings
	AvgTextScore float64
}

// Summarize aggregates reconstructed records into one summary per track,
// ordered by track id.  Interpolated rows are synthesized and carry no
// model confidence, so only observed rows count.
func Summarize(recs []tracker.Record) []TrackSummary {
	byTrack := make(map[int]*TrackSummary)
	scores := make(map[int][]float64)

	for i := range recs {
		rec := &recs[i]

		if rec.Interpolated {
			continue
		}

		s, exists := byTrack[rec.TrackID]

		if !exists {
			s = &TrackSummary{
				TrackID:    rec.TrackID,
				FirstFrame: rec.FrameNmr,
				LastFrame:  rec.FrameNmr,
			}
			byTrack[rec.TrackID] = s
		}

		if rec.FrameNmr < s.FirstFrame {
			s.FirstFrame = rec.FrameNmr
		}

		if rec.FrameNmr > s.LastFrame {
			s.LastFrame = rec.FrameNmr
		}

		s.Detections++

		if rec.Text == "" {
			continue
		}

		s.Readings++
		scores[rec.TrackID] = append(scores[rec.TrackID], rec.TextScore)

		if rec.TextScore > s.BestTextScore {
			s.BestTextScore = rec.TextScore
			s.Plate = rec.Text
		}
	}

	out := make([]TrackSummary, 0, len(byTrack))

	for id, s := range byTrack {
		if len(scores[id]) > 0 {
			s.AvgTextScore = stat.Mean(scores[id], nil)
		}

		out = append(out, *s)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].TrackID < out[j].TrackID
	})

	return out
}
