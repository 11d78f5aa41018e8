package record

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/AhmedTolbh/CarCheacks/tracker"
)

// DB persists reconstructed records in a SQLite database so later passes
// and reporting tools can query a video's record table without re-running
// the pipeline
type DB struct {
	*sql.DB
}

// OpenDB opens or creates the record database at the given path.  Use
// ":memory:" for a throwaway in-memory database.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)

	if err != nil {
		return nil, fmt.Errorf("opening record database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			frame_nmr INTEGER NOT NULL,
			car_id INTEGER NOT NULL,
			car_bbox TEXT NOT NULL,
			license_plate_bbox TEXT NOT NULL,
			license_plate_bbox_score DOUBLE NOT NULL,
			license_number TEXT NOT NULL,
			license_number_score DOUBLE NOT NULL,
			interpolated INTEGER NOT NULL,
			PRIMARY KEY (car_id, frame_nmr)
		);
	`)

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating records table: %w", err)
	}

	return &DB{db}, nil
}

// InsertRecords stores one pass worth of reconstructed records inside a
// single transaction; on any failure nothing is committed
func (db *DB) InsertRecords(recs []tracker.Record) error {
	tx, err := db.Begin()

	if err != nil {
		return fmt.Errorf("starting record insert: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO records (
			frame_nmr, car_id, car_bbox, license_plate_bbox,
			license_plate_bbox_score, license_number, license_number_score,
			interpolated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)

	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing record insert: %w", err)
	}

	defer stmt.Close()

	for i := range recs {
		rec := &recs[i]

		plateBox := zeroBox

		if rec.PlateBox != nil {
			plateBox = *rec.PlateBox
		}

		interpolated := 0

		if rec.Interpolated {
			interpolated = 1
		}

		_, err = stmt.Exec(rec.FrameNmr, rec.TrackID, rec.CarBox.String(),
			plateBox.String(), rec.PlateScore, rec.Text, rec.TextScore,
			interpolated)

		if err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting record (frame %d, car %d): %w",
				rec.FrameNmr, rec.TrackID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing record insert: %w", err)
	}

	return nil
}

// TrackRecords loads the stored records for one car ordered by frame
func (db *DB) TrackRecords(carID int) ([]tracker.Record, error) {
	rows, err := db.Query(`
		SELECT frame_nmr, car_id, car_bbox, license_plate_bbox,
			license_plate_bbox_score, license_number, license_number_score,
			interpolated
		FROM records WHERE car_id = ? ORDER BY frame_nmr
	`, carID)

	if err != nil {
		return nil, fmt.Errorf("querying track %d: %w", carID, err)
	}

	defer rows.Close()

	var recs []tracker.Record

	for rows.Next() {
		var (
			rec          tracker.Record
			carBox       string
			plateBox     string
			interpolated int
		)

		err = rows.Scan(&rec.FrameNmr, &rec.TrackID, &carBox, &plateBox,
			&rec.PlateScore, &rec.Text, &rec.TextScore, &interpolated)

		if err != nil {
			return nil, fmt.Errorf("scanning track %d: %w", carID, err)
		}

		rec.CarBox, err = tracker.ParseRect(carBox)

		if err != nil {
			return nil, fmt.Errorf("stored car_bbox: %w", err)
		}

		pb, err := tracker.ParseRect(plateBox)

		if err != nil {
			return nil, fmt.Errorf("stored license_plate_bbox: %w", err)
		}

		if !pb.IsZero() {
			rec.PlateBox = &pb
		}

		rec.Interpolated = interpolated == 1

		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading track %d: %w", carID, err)
	}

	return recs, nil
}

// TrackIDs returns the distinct car ids stored, ascending
func (db *DB) TrackIDs() ([]int, error) {
	rows, err := db.Query(`SELECT DISTINCT car_id FROM records ORDER BY car_id`)

	if err != nil {
		return nil, fmt.Errorf("querying track ids: %w", err)
	}

	defer rows.Close()

	var ids []int

	for rows.Next() {
		var id int

		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning track id: %w", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading track ids: %w", err)
	}

	return ids, nil
}
