/*
Example code showing how to reconstruct dense per-vehicle plate records
from a pre-computed detection stream and replay them over the source video
*/
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"

	"gocv.io/x/gocv"

	carcheacks "github.com/AhmedTolbh/CarCheacks"
	"github.com/AhmedTolbh/CarCheacks/pipeline"
	"github.com/AhmedTolbh/CarCheacks/plate"
	"github.com/AhmedTolbh/CarCheacks/record"
	"github.com/AhmedTolbh/CarCheacks/tracker"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	detFile := flag.String("d", "detections.jsonl", "JSONL file of per-frame detector and tracker output")
	csvFile := flag.String("o", "records.csv", "The output CSV record table")
	jsonlFile := flag.String("j", "", "Optional output JSONL record file")
	dbFile := flag.String("db", "", "Optional SQLite database to persist records to")
	whitelistFile := flag.String("w", "", "Optional CSV whitelist of authorized plates")
	accessLog := flag.String("a", "access_log.csv", "The access log CSV file appended to when a whitelist is given")
	videoFile := flag.String("i", "", "Optional source video to annotate")
	outVideo := flag.String("v", "alpr-out.mp4", "The annotated output video written when a source video is given")

	flag.Parse()

	records, err := run(*detFile)

	if err != nil {
		log.Fatal("Error reconstructing records: ", err)
	}

	log.Printf("Reconstructed %d records\n", len(records))

	if err := record.WriteCSVFile(*csvFile, records); err != nil {
		log.Fatal("Error writing CSV records: ", err)
	}

	log.Printf("Saved record table to %s\n", *csvFile)

	if *jsonlFile != "" {
		if err := writeJSONL(*jsonlFile, records); err != nil {
			log.Fatal("Error writing JSONL records: ", err)
		}

		log.Printf("Saved JSONL records to %s\n", *jsonlFile)
	}

	if *dbFile != "" {
		if err := persist(*dbFile, records); err != nil {
			log.Fatal("Error persisting records: ", err)
		}

		log.Printf("Persisted records to %s\n", *dbFile)
	}

	for _, s := range record.Summarize(records) {
		log.Printf("track %d: plate %q frames %d-%d detections %d readings %d avg score %.2f\n",
			s.TrackID, s.Plate, s.FirstFrame, s.LastFrame, s.Detections,
			s.Readings, s.AvgTextScore)
	}

	if *whitelistFile != "" {
		if err := gatekeep(*whitelistFile, *accessLog, records); err != nil {
			log.Fatal("Error running access control: ", err)
		}
	}

	if *videoFile != "" {
		if err := annotate(*videoFile, *outVideo, records); err != nil {
			log.Fatal("Error annotating video: ", err)
		}

		log.Printf("Saved annotated video to %s\n", *outVideo)
	}

	log.Println("done")
}

// run replays the detection stream through the per-frame pipeline and
// reconstructs the dense record table
func run(detFile string) ([]tracker.Record, error) {

	f, err := os.Open(detFile)

	if err != nil {
		return nil, fmt.Errorf("opening detections: %w", err)
	}

	defer f.Close()

	frames, err := record.ReadDetections(f)

	if err != nil {
		return nil, err
	}

	// the canonicalizer and pipeline are built once for the whole pass
	pl := pipeline.New(plate.NewCanonicalizer(plate.DefaultParams()))

	for _, frame := range frames {
		readings := make([]pipeline.Reading, len(frame.Plates))

		for i, p := range frame.Plates {
			readings[i] = pipeline.Reading{
				Box:       p.Box,
				Score:     p.Score,
				RawText:   p.Text,
				TextScore: p.TextScore,
			}
		}

		if err := pl.ProcessReadings(frame.Nmr, frame.Cars, readings); err != nil {
			return nil, err
		}
	}

	return tracker.Reconstruct(pl.Observations())
}

// writeJSONL saves the records in JSONL wire form
func writeJSONL(path string, records []tracker.Record) error {

	f, err := os.Create(path)

	if err != nil {
		return fmt.Errorf("creating JSONL file: %w", err)
	}

	if err := record.WriteJSONL(f, records); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// persist stores the records in a SQLite database
func persist(path string, records []tracker.Record) error {

	db, err := record.OpenDB(path)

	if err != nil {
		return err
	}

	defer db.Close()

	return db.InsertRecords(records)
}

// gatekeep runs every legible plate through the access control layer and
// appends fresh decisions to the access log
func gatekeep(whitelistFile, logFile string, records []tracker.Record) error {

	authorized, err := carcheacks.LoadWhitelist(whitelistFile)

	if err != nil {
		return fmt.Errorf("loading whitelist: %w", err)
	}

	// append to an existing log, write the header only on a fresh file
	_, statErr := os.Stat(logFile)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)

	if err != nil {
		return fmt.Errorf("opening access log: %w", err)
	}

	defer f.Close()

	gate := carcheacks.NewGatekeeper(authorized, f, 0)

	if fresh {
		if err := gate.WriteLogHeader(); err != nil {
			return err
		}
	}

	// one decision per plate: the summaries already reduce each track to
	// its best reading
	for _, s := range record.Summarize(records) {
		if s.Plate == "" {
			continue
		}

		status, logged, err := gate.Process(s.Plate)

		if err != nil {
			return err
		}

		if logged {
			log.Printf("plate %s: %s\n", s.Plate, status)
		}
	}

	return nil
}

// annotate replays the reconstructed records over the source video and
// writes an output video with car boxes, plate boxes and plate numbers
func annotate(videoFile, outFile string, records []tracker.Record) error {

	video, err := gocv.VideoCaptureFile(videoFile)

	if err != nil {
		return fmt.Errorf("opening video: %w", err)
	}

	defer video.Close()

	fps := video.Get(gocv.VideoCaptureFPS)
	width := int(video.Get(gocv.VideoCaptureFrameWidth))
	height := int(video.Get(gocv.VideoCaptureFrameHeight))

	writer, err := gocv.VideoWriterFile(outFile, "mp4v", fps, width, height, true)

	if err != nil {
		return fmt.Errorf("opening video writer: %w", err)
	}

	defer writer.Close()

	// index records by frame for the replay loop
	byFrame := make(map[int][]tracker.Record)

	for _, rec := range records {
		byFrame[rec.FrameNmr] = append(byFrame[rec.FrameNmr], rec)
	}

	img := gocv.NewMat()
	defer img.Close()

	carColor := color.RGBA{G: 255}
	plateColor := color.RGBA{R: 255}

	for frameNmr := 0; ; frameNmr++ {
		if ok := video.Read(&img); !ok || img.Empty() {
			break
		}

		for _, rec := range byFrame[frameNmr] {
			gocv.Rectangle(&img, boxToRect(rec.CarBox), carColor, 2)

			if rec.PlateBox != nil {
				gocv.Rectangle(&img, boxToRect(*rec.PlateBox), plateColor, 2)
			}

			label := fmt.Sprintf("car %d", rec.TrackID)

			if rec.Text != "" {
				label = fmt.Sprintf("car %d %s", rec.TrackID, rec.Text)
			}

			gocv.PutText(&img, label,
				image.Pt(int(rec.CarBox.X1()), int(rec.CarBox.Y1())-6),
				gocv.FontHersheyDuplex, 0.6, carColor, 1)
		}

		if err := writer.Write(img); err != nil {
			return fmt.Errorf("writing frame %d: %w", frameNmr, err)
		}
	}

	return nil
}

// boxToRect converts a record box to an image rectangle for drawing
func boxToRect(box tracker.Rect) image.Rectangle {
	return image.Rect(int(box.X1()), int(box.Y1()), int(box.X2()), int(box.Y2()))
}
