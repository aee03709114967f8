package sink

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/LdDl/proctor-go/proctor"
)

// schema.sql holds tables for runs, per-frame records, identities and incidents.
//
//go:embed schema.sql
var schemaSQL string

// SQLite stores tracker output of a single run. Several runs may share one database file
type SQLite struct {
	db    *sql.DB
	runID uuid.UUID
}

// NewSQLite opens (or creates) database at path and registers the run
func NewSQLite(ctx context.Context, path string, runID uuid.UUID) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "can't open sqlite database")
	}
	// Single writer
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "can't apply schema")
	}
	_, err = db.ExecContext(ctx, `INSERT INTO runs (run_id, started_at) VALUES (?, ?)`, runID.String(), time.Now().Unix())
	if err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "can't register run %s", runID)
	}
	return &SQLite{db: db, runID: runID}, nil
}

// DB exposes underlying handle for queries
func (sink *SQLite) DB() *sql.DB {
	return sink.db
}

// WriteFrame implements Sink. All records of a frame go in one transaction
func (sink *SQLite) WriteFrame(ctx context.Context, frame int, records []proctor.Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := sink.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "can't begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO frame_records (
			run_id, frame, stable_id, ephemeral_id, x1, y1, x2, y2,
			face_detected, phone_flag, anomaly_active, flagged_overall,
			suspicion_counter, total_incidents
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.Wrap(err, "can't prepare frame insert")
	}
	defer stmt.Close()

	for _, record := range records {
		x1, y1, x2, y2 := record.Box.Corners()
		_, err := stmt.ExecContext(ctx,
			sink.runID.String(), frame, record.StableID, record.EphemeralID, x1, y1, x2, y2,
			record.FaceDetected, record.PhoneFlag, record.AnomalyActive, record.FlaggedOverall,
			record.SuspicionCounter, record.TotalIncidents,
		)
		if err != nil {
			return errors.Wrapf(err, "can't insert record of stable id %d at frame %d", record.StableID, frame)
		}
	}
	return errors.Wrap(tx.Commit(), "can't commit frame")
}

// WriteSummary implements Sink
func (sink *SQLite) WriteSummary(ctx context.Context, summary proctor.Summary) error {
	tx, err := sink.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "can't begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE runs SET total_frames = ?, total_identities_created = ?, live_identities = ?
		WHERE run_id = ?
	`, summary.TotalFrames, summary.TotalIdentitiesCreated, summary.LiveIdentities, sink.runID.String())
	if err != nil {
		return errors.Wrap(err, "can't update run")
	}

	for _, identity := range summary.Identities {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO identities (run_id, stable_id, first_seen_frame, last_seen_frame, evicted, phone_frames, total_incidents)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, sink.runID.String(), identity.StableID, identity.FirstSeenFrame, identity.LastSeenFrame,
			identity.Evicted, identity.PhoneFrames, identity.TotalIncidents)
		if err != nil {
			return errors.Wrapf(err, "can't insert identity %d", identity.StableID)
		}
		for _, incident := range identity.Incidents {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO incidents (run_id, stable_id, frame, h_delta, v_delta, horizontal, vertical, direction)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, sink.runID.String(), identity.StableID, incident.Frame, incident.HDelta, incident.VDelta,
				incident.Horizontal, incident.Vertical, incident.Direction)
			if err != nil {
				return errors.Wrapf(err, "can't insert incident of identity %d at frame %d", identity.StableID, incident.Frame)
			}
		}
	}
	return errors.Wrap(tx.Commit(), "can't commit summary")
}

// Close implements Sink
func (sink *SQLite) Close() error {
	return sink.db.Close()
}
