// Package record serializes and persists reconstructed track records for
// downstream consumers: the reference CSV table, a JSONL wire form and a
// SQLite table, plus per-track plate summaries.
package record

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/AhmedTolbh/CarCheacks/tracker"
)

// csvHeader is the reference column set consumed by downstream
// visualization tools, plus the additive interpolated column
var csvHeader = []string{
	"frame_nmr",
	"car_id",
	"car_bbox",
	"license_plate_bbox",
	"license_plate_bbox_score",
	"license_number",
	"license_number_score",
	"interpolated",
}

// zeroBox is the encoding of an absent plate box
var zeroBox = tracker.NewRect(0, 0, 0, 0)

// WriteCSV writes records as the reference CSV table, one row per record.
// Absent plate boxes render as a zero box, absent text as an empty string
// with score 0, matching what downstream consumers expect.
func WriteCSV(w io.Writer, recs []tracker.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for i := range recs {
		if err := cw.Write(csvRow(&recs[i])); err != nil {
			return fmt.Errorf("writing csv row %d: %w", i, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteCSVFile writes records to a CSV file at the given path
func WriteCSVFile(path string, recs []tracker.Record) error {
	f, err := os.Create(path)

	if err != nil {
		return fmt.Errorf("creating csv file: %w", err)
	}

	if err := WriteCSV(f, recs); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// csvRow renders a single record into the reference column set
func csvRow(rec *tracker.Record) []string {
	plateBox := zeroBox

	if rec.PlateBox != nil {
		plateBox = *rec.PlateBox
	}

	interpolated := "0"

	if rec.Interpolated {
		interpolated = "1"
	}

	return []string{
		strconv.Itoa(rec.FrameNmr),
		strconv.Itoa(rec.TrackID),
		rec.CarBox.String(),
		plateBox.String(),
		strconv.FormatFloat(rec.PlateScore, 'f', -1, 64),
		rec.Text,
		strconv.FormatFloat(rec.TextScore, 'f', -1, 64),
		interpolated,
	}
}

// ReadCSV parses a CSV table written by WriteCSV.  Files from older tools
// without the additive interpolated column are accepted, their rows load
// with the flag unset.
func ReadCSV(r io.Reader) ([]tracker.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()

	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("reading csv: missing header row")
	}

	var recs []tracker.Record

	for i, row := range rows[1:] {
		rec, err := parseCSVRow(row)

		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", i+1, err)
		}

		recs = append(recs, rec)
	}

	return recs, nil
}

// parseCSVRow parses one data row of the reference column set
func parseCSVRow(row []string) (tracker.Record, error) {
	var rec tracker.Record

	if len(row) != len(csvHeader) && len(row) != len(csvHeader)-1 {
		return rec, fmt.Errorf("expected %d or %d columns, got %d",
			len(csvHeader)-1, len(csvHeader), len(row))
	}

	frame, err := strconv.Atoi(row[0])

	if err != nil {
		return rec, fmt.Errorf("frame_nmr: %w", err)
	}

	carID, err := strconv.Atoi(row[1])

	if err != nil {
		return rec, fmt.Errorf("car_id: %w", err)
	}

	carBox, err := tracker.ParseRect(row[2])

	if err != nil {
		return rec, fmt.Errorf("car_bbox: %w", err)
	}

	plateBox, err := tracker.ParseRect(row[3])

	if err != nil {
		return rec, fmt.Errorf("license_plate_bbox: %w", err)
	}

	plateScore, err := strconv.ParseFloat(row[4], 64)

	if err != nil {
		return rec, fmt.Errorf("license_plate_bbox_score: %w", err)
	}

	textScore, err := strconv.ParseFloat(row[6], 64)

	if err != nil {
		return rec, fmt.Errorf("license_number_score: %w", err)
	}

	rec.FrameNmr = frame
	rec.TrackID = carID
	rec.CarBox = carBox
	rec.PlateScore = plateScore
	rec.Text = row[5]
	rec.TextScore = textScore

	if !plateBox.IsZero() {
		rec.PlateBox = &plateBox
	}

	if len(row) == len(csvHeader) {
		rec.Interpolated = row[7] == "1"
	}

	return rec, nil
}
