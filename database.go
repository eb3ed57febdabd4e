package main

import (
	"database/sql"
	"math"
	"os"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

/*
note: positions are rounded to the meter. sqlite stores whole REALs as
integers, which keeps the belt rows small.

really only 1 worker is useful for sqlite since it allows only 1 writer at a time.
*/

const schema = `
CREATE TABLE bodies (
	frame 	INTEGER,
	id 		INTEGER, -- body id
	tier 	INTEGER, -- 0 primary, 1 secondary
	x 		REAL,
	y 		REAL,
	vx 		REAL,
	vy 		REAL,
	mass 	REAL,
	radius 	REAL);

CREATE TABLE diagnostics (
	frame 		INTEGER PRIMARY KEY,
	time 		REAL, -- simulated seconds
	integrator 	TEXT,
	kinetic 	REAL,
	potential 	REAL,
	drift 		REAL,
	bodies 		INTEGER);
`

const indices = `
CREATE INDEX idx_frame ON bodies (frame, id);
CREATE INDEX idx_id ON bodies (id);
CREATE INDEX idx_mass ON bodies (mass);
`

const insert = `INSERT INTO bodies VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`
const insertDiagnostic = `INSERT INTO diagnostics VALUES (?, ?, ?, ?, ?, ?, ?);`
const queryFrame = `SELECT id, tier, x, y, vx, vy, mass, radius FROM bodies WHERE frame = ? ORDER BY id ASC;`
const queryDiagnostic = `SELECT time, integrator, kinetic, potential, drift FROM diagnostics WHERE frame = ?;`

type database struct {
	*sql.DB
}

// opens and initializes a new db in filename. an existing file is an error.
func opendb(filename string) (*database, error) {
	if _, err := os.Stat(filename); err == nil {
		return nil, errors.Errorf("%s exists", filename)
	}
	db, err := sql.Open("sqlite3", "file:"+filename+"?_journal_mode=OFF&_synchronous=OFF")
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", filename)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create tables")
	}
	return &database{db}, nil
}

// creates the indices, which is faster after the rows are in, and closes db.
func (db *database) close() error {
	if _, err := db.Exec(indices); err != nil {
		db.DB.Close()
		return errors.Wrap(err, "create indices")
	}
	return errors.Wrap(db.DB.Close(), "close database")
}

// writes one frame in a single transaction.
func (db *database) writeFrame(job *frameJob) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin")
	}

	stmt, err := tx.Prepare(insert)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "prepare")
	}
	defer stmt.Close()

	for _, b := range job.Bodies {
		_, err = stmt.Exec(
			job.Frame,
			int64(b.ID),
			b.Tier,
			math.Round(b.X),
			math.Round(b.Y),
			b.Vx,
			b.Vy,
			b.Mass,
			b.Radius)
		if err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "insert body %d of frame %d", b.ID, job.Frame)
		}
	}

	_, err = tx.Exec(insertDiagnostic,
		job.Frame,
		job.Time,
		job.Integrator,
		job.Energy.Kinetic,
		job.Energy.Potential,
		job.Drift,
		len(job.Bodies))
	if err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "insert diagnostics of frame %d", job.Frame)
	}

	return errors.Wrap(tx.Commit(), "commit")
}

// reads back the bodies and diagnostics of a recorded frame. trails and
// presentation fields are not stored.
func (db *database) loadFrame(frame int) (*frameJob, error) {
	job := &frameJob{Frame: frame}
	err := db.QueryRow(queryDiagnostic, frame).Scan(
		&job.Time,
		&job.Integrator,
		&job.Energy.Kinetic,
		&job.Energy.Potential,
		&job.Drift)
	if err == sql.ErrNoRows {
		return nil, errors.Errorf("frame %d not recorded", frame)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "diagnostics of frame %d", frame)
	}

	rows, err := db.Query(queryFrame, frame)
	if err != nil {
		return nil, errors.Wrapf(err, "bodies of frame %d", frame)
	}
	defer rows.Close()

	for rows.Next() {
		var b frameBody
		var id int64
		if err := rows.Scan(&id, &b.Tier, &b.X, &b.Y, &b.Vx, &b.Vy, &b.Mass, &b.Radius); err != nil {
			return nil, errors.Wrapf(err, "bodies of frame %d", frame)
		}
		b.ID = uint64(id)
		job.Bodies = append(job.Bodies, b)
	}
	return job, errors.Wrapf(rows.Err(), "bodies of frame %d", frame)
}

// outputs frames to an sqlite database instead of an image.
func frameToSqlite(db *database, wg *sync.WaitGroup, ch chan *frameJob) {
	for job := range ch {
		if err := db.writeFrame(job); err != nil {
			panic(err)
		}
	}
	wg.Done()
}
