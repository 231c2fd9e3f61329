package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/grapebaby/grape/internal/apperr"
	"github.com/grapebaby/grape/internal/models"
)

// Export reads every record of the subject in one read transaction.
func (db *DB) Export(ctx context.Context, babyID string, exportedAt time.Time) (*models.Snapshot, error) {
	tx, err := db.conn.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // read-only

	snap := &models.Snapshot{ExportDate: exportedAt.UTC()}

	baby, err := queryOne(ctx, tx, scanBaby,
		`SELECT id, name, birth_date, gender, photo, created_at FROM babies WHERE id = ?`, babyID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("store: export baby: %w", err)
	default:
		snap.Baby = baby
	}

	if snap.Feedings, err = queryRows(ctx, tx, scanFeeding,
		`SELECT `+feedingCols+` FROM feedings WHERE baby_id = ? ORDER BY time`, babyID); err != nil {
		return nil, fmt.Errorf("store: export feedings: %w", err)
	}
	if snap.SleepRecords, err = queryRows(ctx, tx, scanSleep,
		`SELECT `+sleepCols+` FROM sleep_records WHERE baby_id = ? ORDER BY start_time`, babyID); err != nil {
		return nil, fmt.Errorf("store: export sleeps: %w", err)
	}
	if snap.DiaperRecords, err = queryRows(ctx, tx, scanDiaper,
		`SELECT `+diaperCols+` FROM diaper_records WHERE baby_id = ? ORDER BY time`, babyID); err != nil {
		return nil, fmt.Errorf("store: export diapers: %w", err)
	}
	if snap.GrowthRecords, err = listGrowth(ctx, tx, babyID); err != nil {
		return nil, fmt.Errorf("store: export growth: %w", err)
	}
	if snap.Vaccinations, err = listVaccinations(ctx, tx, babyID); err != nil {
		return nil, fmt.Errorf("store: export vaccinations: %w", err)
	}
	if snap.DoctorVisits, err = listDoctorVisits(ctx, tx, babyID); err != nil {
		return nil, fmt.Errorf("store: export doctor visits: %w", err)
	}
	if snap.Temperatures, err = queryRows(ctx, tx, scanTemperature,
		`SELECT `+temperatureCols+` FROM temperatures WHERE baby_id = ? ORDER BY time`, babyID); err != nil {
		return nil, fmt.Errorf("store: export temperatures: %w", err)
	}
	if snap.Milestones, err = listMilestones(ctx, tx, babyID, ""); err != nil {
		return nil, fmt.Errorf("store: export milestones: %w", err)
	}
	return snap, nil
}

// Import upserts every record of snap in a single transaction. Records with
// an id already present are replaced. It returns the number of records
// written, excluding the subject row.
func (db *DB) Import(ctx context.Context, snap *models.Snapshot) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	const verb = "INSERT OR REPLACE"
	if snap.Baby != nil {
		if err := upsertBaby(ctx, tx, *snap.Baby); err != nil {
			return 0, err
		}
	}
	for _, r := range snap.Feedings {
		if err := insertFeeding(ctx, tx, verb, r); err != nil {
			return 0, err
		}
	}
	for _, r := range snap.SleepRecords {
		if err := insertSleep(ctx, tx, verb, r); err != nil {
			return 0, err
		}
	}
	for _, r := range snap.DiaperRecords {
		if err := insertDiaper(ctx, tx, verb, r); err != nil {
			return 0, err
		}
	}
	for _, r := range snap.GrowthRecords {
		if err := insertGrowth(ctx, tx, verb, r); err != nil {
			return 0, err
		}
	}
	for _, r := range snap.Vaccinations {
		if err := insertVaccination(ctx, tx, verb, r); err != nil {
			return 0, err
		}
	}
	for _, r := range snap.DoctorVisits {
		if err := insertDoctorVisit(ctx, tx, verb, r); err != nil {
			return 0, err
		}
	}
	for _, r := range snap.Temperatures {
		if err := insertTemperature(ctx, tx, verb, r); err != nil {
			return 0, err
		}
	}
	for _, r := range snap.Milestones {
		if err := insertMilestone(ctx, tx, verb, r); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit import: %w", err)
	}
	return snap.Count(), nil
}

// ImportChecksums returns the checksum recorded for every imported file.
func (db *DB) ImportChecksums(ctx context.Context) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT path, checksum FROM imports`)
	if err != nil {
		return nil, fmt.Errorf("store: import checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// RecordImport notes that the file at meta.Path was imported.
func (db *DB) RecordImport(ctx context.Context, meta models.FileMetadata, records int, at time.Time) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO imports (path, checksum, records, imported_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum    = excluded.checksum,
			records     = excluded.records,
			imported_at = excluded.imported_at
	`, meta.Path, meta.Checksum, records, encodeTime(at))
	return mapErr("record import", err)
}
