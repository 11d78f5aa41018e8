package record

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/AhmedTolbh/CarCheacks/tracker"
)

// PlateReading is one plate detection with its raw recognized text as
// produced by the external detector and OCR stage for one frame
type PlateReading struct {
	Box       tracker.Rect
	Score     float64
	Text      string
	TextScore float64
}

// Frame is one frame worth of external detector and tracker output: the
// tracked cars with their persistent ids plus any plate readings
type Frame struct {
	Nmr    int
	Cars   []tracker.Candidate
	Plates []PlateReading
}

// ReadDetections parses a JSONL stream of per-frame detector and tracker
// output, one JSON object per line:
//
//	{"frame_nmr":0,
//	 "cars":[{"id":1,"bbox":[0,0,100,100]}],
//	 "plates":[{"bbox":[10,60,40,80],"score":0.9,"text":"AB12CDE","text_score":0.8}]}
func ReadDetections(r io.Reader) ([]Frame, error) {
	s := bufio.NewScanner(r)

	// detection lines for busy frames can run long
	bufsize := 10 << 20
	s.Buffer(make([]byte, bufsize), bufsize)

	var frames []Frame
	line := 0

	for s.Scan() {
		line++

		data := s.Bytes()

		if len(data) == 0 {
			continue
		}

		if !gjson.ValidBytes(data) {
			return nil, fmt.Errorf("detections line %d: invalid JSON", line)
		}

		root := gjson.ParseBytes(data)

		frame := Frame{
			Nmr: int(root.Get("frame_nmr").Int()),
		}

		for _, car := range root.Get("cars").Array() {
			box, err := jsonBox(car.Get("bbox"))

			if err != nil {
				return nil, fmt.Errorf("detections line %d: car bbox: %w", line, err)
			}

			frame.Cars = append(frame.Cars, tracker.Candidate{
				TrackID: int(car.Get("id").Int()),
				Box:     box,
			})
		}

		for _, pl := range root.Get("plates").Array() {
			box, err := jsonBox(pl.Get("bbox"))

			if err != nil {
				return nil, fmt.Errorf("detections line %d: plate bbox: %w", line, err)
			}

			frame.Plates = append(frame.Plates, PlateReading{
				Box:       box,
				Score:     pl.Get("score").Float(),
				Text:      pl.Get("text").String(),
				TextScore: pl.Get("text_score").Float(),
			})
		}

		frames = append(frames, frame)
	}

	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading detections: %w", err)
	}

	return frames, nil
}

// jsonBox converts a JSON bbox array of four numbers into a Rect
func jsonBox(v gjson.Result) (tracker.Rect, error) {
	arr := v.Array()

	if len(arr) != 4 {
		return tracker.Rect{}, fmt.Errorf("expected 4 coordinates, got %d", len(arr))
	}

	return tracker.NewRect(arr[0].Float(), arr[1].Float(), arr[2].Float(), arr[3].Float()), nil
}

// WriteJSONL writes reconstructed records as a JSONL stream, one object
// per record with the same field names as the CSV columns
func WriteJSONL(w io.Writer, recs []tracker.Record) error {
	bw := bufio.NewWriter(w)

	for i := range recs {
		line, err := jsonRow(&recs[i])

		if err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}

		if _, err := bw.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
	}

	return bw.Flush()
}

// jsonRow builds the JSON object for one record
func jsonRow(rec *tracker.Record) (string, error) {
	plateBox := zeroBox

	if rec.PlateBox != nil {
		plateBox = *rec.PlateBox
	}

	line := ""

	for _, kv := range []struct {
		key string
		val interface{}
	}{
		{"frame_nmr", rec.FrameNmr},
		{"car_id", rec.TrackID},
		{"car_bbox", []float64(rec.CarBox.Xyxy)},
		{"license_plate_bbox", []float64(plateBox.Xyxy)},
		{"license_plate_bbox_score", rec.PlateScore},
		{"license_number", rec.Text},
		{"license_number_score", rec.TextScore},
		{"interpolated", rec.Interpolated},
	} {
		var err error
		line, err = sjson.Set(line, kv.key, kv.val)

		if err != nil {
			return "", err
		}
	}

	return line, nil
}
