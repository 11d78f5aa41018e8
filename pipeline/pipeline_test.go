package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/AhmedTolbh/CarCheacks/plate"
	"github.com/AhmedTolbh/CarCheacks/tracker"
)

func newTestPipeline() *Pipeline {
	return New(plate.NewCanonicalizer(plate.DefaultParams()))
}

func TestProcessReadingsRecordsEveryCar(t *testing.T) {

	p := newTestPipeline()

	cars := []tracker.Candidate{
		{TrackID: 1, Box: tracker.NewRect(0, 0, 100, 100)},
		{TrackID: 2, Box: tracker.NewRect(200, 0, 300, 100)},
	}

	// one plate, inside car 1, with clean text
	readings := []Reading{
		{
			Box:       tracker.NewRect(20, 60, 60, 80),
			Score:     0.91,
			RawText:   "AB12CDE",
			TextScore: 0.88,
		},
	}

	require.NoError(t, p.ProcessReadings(0, cars, readings))

	obs := p.Observations()
	require.Len(t, obs, 2, "every tracked car gets a row, plate or not")

	withPlate := obs[0]
	require.Equal(t, 1, withPlate.TrackID)
	require.NotNil(t, withPlate.PlateBox)
	assert.Equal(t, 0.91, withPlate.PlateScore)
	assert.Equal(t, "AB12CDE", withPlate.Text)
	assert.Equal(t, 0.88, withPlate.TextScore)

	bare := obs[1]
	require.Equal(t, 2, bare.TrackID)
	assert.Nil(t, bare.PlateBox)
	assert.Empty(t, bare.Text)
}

func TestProcessReadingsCorrectsText(t *testing.T) {

	p := newTestPipeline()

	cars := []tracker.Candidate{
		{TrackID: 1, Box: tracker.NewRect(0, 0, 100, 100)},
	}

	readings := []Reading{
		{
			Box:       tracker.NewRect(20, 60, 60, 80),
			Score:     0.9,
			RawText:   "ab1o cde",
			TextScore: 0.7,
		},
	}

	require.NoError(t, p.ProcessReadings(3, cars, readings))

	obs := p.Observations()
	require.Len(t, obs, 1)
	assert.Equal(t, "AB10CDE", obs[0].Text)
}

func TestProcessReadingsDropsRejectedText(t *testing.T) {

	p := newTestPipeline()

	cars := []tracker.Candidate{
		{TrackID: 1, Box: tracker.NewRect(0, 0, 100, 100)},
	}

	readings := []Reading{
		{
			Box:       tracker.NewRect(20, 60, 60, 80),
			Score:     0.9,
			RawText:   "garbage!!",
			TextScore: 0.6,
		},
	}

	require.NoError(t, p.ProcessReadings(0, cars, readings))

	obs := p.Observations()
	require.Len(t, obs, 1)

	// the plate stays localized but carries no text
	require.NotNil(t, obs[0].PlateBox)
	assert.Empty(t, obs[0].Text)
	assert.Zero(t, obs[0].TextScore)
}

func TestProcessReadingsDropsUnassociated(t *testing.T) {

	p := newTestPipeline()

	cars := []tracker.Candidate{
		{TrackID: 1, Box: tracker.NewRect(0, 0, 100, 100)},
	}

	// plate box outside every car box is discarded, not buffered
	readings := []Reading{
		{Box: tracker.NewRect(500, 500, 550, 520), Score: 0.9, RawText: "AB12CDE", TextScore: 0.9},
	}

	require.NoError(t, p.ProcessReadings(0, cars, readings))

	obs := p.Observations()
	require.Len(t, obs, 1)
	assert.Nil(t, obs[0].PlateBox)
	assert.Empty(t, obs[0].Text)
}

func TestProcessReadingsLastReadingWins(t *testing.T) {

	p := newTestPipeline()

	cars := []tracker.Candidate{
		{TrackID: 1, Box: tracker.NewRect(0, 0, 100, 100)},
	}

	readings := []Reading{
		{Box: tracker.NewRect(10, 10, 30, 20), Score: 0.5, RawText: "AB12CDE", TextScore: 0.5},
		{Box: tracker.NewRect(20, 60, 60, 80), Score: 0.9, RawText: "XY99ZZZ", TextScore: 0.8},
	}

	require.NoError(t, p.ProcessReadings(0, cars, readings))

	obs := p.Observations()
	require.Len(t, obs, 1)
	assert.Equal(t, "XY99ZZZ", obs[0].Text)
	assert.Equal(t, 0.9, obs[0].PlateScore)
}

func TestProcessFrameRequiresModels(t *testing.T) {

	p := newTestPipeline()

	err := p.ProcessFrame(0, gocv.Mat{}, nil)
	assert.ErrorIs(t, err, ErrNoModels)
}

// fakeDetector returns a fixed detection list without touching the frame
type fakeDetector struct {
	detections []Detection
	err        error
}

func (f *fakeDetector) Detect(img gocv.Mat) ([]Detection, error) {
	return f.detections, f.err
}

// fakeReader returns fixed text without touching the crop
type fakeReader struct {
	text  string
	score float64
}

func (f *fakeReader) Read(crop gocv.Mat) (string, float64, error) {
	return f.text, f.score, nil
}

func TestProcessFrameWithModels(t *testing.T) {

	p := newTestPipeline()

	// no detections means the reader is never asked to crop the frame, so
	// an empty Mat is safe to pass through
	p.AttachModels(&fakeDetector{}, &fakeReader{})

	cars := []tracker.Candidate{
		{TrackID: 1, Box: tracker.NewRect(0, 0, 100, 100)},
	}

	require.NoError(t, p.ProcessFrame(0, gocv.Mat{}, cars))

	obs := p.Observations()
	require.Len(t, obs, 1)
	assert.Nil(t, obs[0].PlateBox)
}

func TestPipelineReconstructionEndToEnd(t *testing.T) {

	p := newTestPipeline()

	// track 1 is observed at frames 0 and 5 only
	frames := []struct {
		nmr  int
		car  tracker.Rect
		box  tracker.Rect
		text string
	}{
		{0, tracker.NewRect(0, 0, 100, 100), tracker.NewRect(10, 60, 40, 80), "AB12CDE"},
		{5, tracker.NewRect(50, 50, 150, 150), tracker.NewRect(60, 110, 90, 130), "AB12CDE"},
	}

	for _, f := range frames {
		cars := []tracker.Candidate{{TrackID: 1, Box: f.car}}
		readings := []Reading{{Box: f.box, Score: 0.9, RawText: f.text, TextScore: 0.8}}

		require.NoError(t, p.ProcessReadings(f.nmr, cars, readings))
	}

	recs, err := tracker.Reconstruct(p.Observations())
	require.NoError(t, err)
	require.Len(t, recs, 6)

	for f := 1; f <= 4; f++ {
		rec := recs[f]

		assert.True(t, rec.Interpolated, "frame %d", f)
		assert.Empty(t, rec.Text, "frame %d", f)
		assert.Zero(t, rec.TextScore, "frame %d", f)
		require.NotNil(t, rec.PlateBox, "frame %d", f)

		// interpolated coordinates stay between their neighbours
		for i := 0; i < 4; i++ {
			assert.GreaterOrEqual(t, rec.CarBox.Xyxy[i], recs[0].CarBox.Xyxy[i])
			assert.LessOrEqual(t, rec.CarBox.Xyxy[i], recs[5].CarBox.Xyxy[i])
		}
	}
}

func TestProcessFrameDetectorError(t *testing.T) {

	p := newTestPipeline()

	p.AttachModels(&fakeDetector{err: assert.AnError}, &fakeReader{})

	err := p.ProcessFrame(0, gocv.Mat{}, nil)
	assert.ErrorIs(t, err, assert.AnError)
}
