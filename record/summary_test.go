package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhmedTolbh/CarCheacks/tracker"
)

func TestSummarize(t *testing.T) {

	p := tracker.NewRect(10, 60, 40, 80)

	recs := []tracker.Record{
		// track 1: two readings of the same plate, one illegible frame,
		// one interpolated row that must not count
		{Observation: tracker.Observation{FrameNmr: 0, TrackID: 1,
			CarBox: tracker.NewRect(0, 0, 100, 100), PlateBox: &p,
			PlateScore: 0.9, Text: "AB12CDE", TextScore: 0.6}},
		{Observation: tracker.Observation{FrameNmr: 1, TrackID: 1,
			CarBox: tracker.NewRect(0, 0, 100, 100)}, Interpolated: true},
		{Observation: tracker.Observation{FrameNmr: 2, TrackID: 1,
			CarBox: tracker.NewRect(0, 0, 100, 100), PlateBox: &p,
			PlateScore: 0.8}},
		{Observation: tracker.Observation{FrameNmr: 4, TrackID: 1,
			CarBox: tracker.NewRect(0, 0, 100, 100), PlateBox: &p,
			PlateScore: 0.95, Text: "AB12CDE", TextScore: 0.9}},
		// track 2: never legible
		{Observation: tracker.Observation{FrameNmr: 3, TrackID: 2,
			CarBox: tracker.NewRect(0, 0, 50, 50)}},
	}

	summaries := Summarize(recs)
	require.Len(t, summaries, 2)

	s1 := summaries[0]
	assert.Equal(t, 1, s1.TrackID)
	assert.Equal(t, "AB12CDE", s1.Plate)
	assert.Equal(t, 0, s1.FirstFrame)
	assert.Equal(t, 4, s1.LastFrame)
	assert.Equal(t, 3, s1.Detections)
	assert.Equal(t, 2, s1.Readings)
	assert.Equal(t, 0.9, s1.BestTextScore)
	assert.InDelta(t, 0.75, s1.AvgTextScore, 1e-9)

	s2 := summaries[1]
	assert.Equal(t, 2, s2.TrackID)
	assert.Empty(t, s2.Plate)
	assert.Equal(t, 1, s2.Detections)
	assert.Zero(t, s2.Readings)
	assert.Zero(t, s2.AvgTextScore)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Empty(t, Summarize(nil))
}
