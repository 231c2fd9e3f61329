package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/grapebaby/grape/internal/apperr"
	"github.com/grapebaby/grape/internal/models"
)

const sleepCols = `id, baby_id, start_time, end_time, quality, note, created_at`

// InsertSleep stores a new sleep interval, open or completed.
func (db *DB) InsertSleep(ctx context.Context, s models.Sleep) error {
	return insertSleep(ctx, db.conn, "INSERT", s)
}

func insertSleep(ctx context.Context, q querier, verb string, s models.Sleep) error {
	_, err := q.ExecContext(ctx, verb+` INTO sleep_records (`+sleepCols+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.BabyID, encodeTime(s.StartTime), encodeTimePtr(s.EndTime), s.Quality, s.Note, encodeTime(s.CreatedAt))
	return mapErr("insert sleep", err)
}

// DeleteSleep removes a sleep interval of the subject.
func (db *DB) DeleteSleep(ctx context.Context, babyID, id string) error {
	return deleteRow(ctx, db.conn, "sleep_records", babyID, id)
}

// GetSleep returns one sleep interval.
func (db *DB) GetSleep(ctx context.Context, babyID, id string) (models.Sleep, error) {
	return queryOne(ctx, db.conn, scanSleep,
		`SELECT `+sleepCols+` FROM sleep_records WHERE id = ? AND baby_id = ?`, id, babyID)
}

// SleepsBetween returns intervals whose start lies in [from, to], oldest first.
func (db *DB) SleepsBetween(ctx context.Context, babyID string, from, to time.Time) ([]models.Sleep, error) {
	return queryRows(ctx, db.conn, scanSleep,
		`SELECT `+sleepCols+` FROM sleep_records WHERE baby_id = ? AND start_time >= ? AND start_time <= ? ORDER BY start_time`,
		babyID, encodeTime(from), encodeTime(to))
}

// ActiveSleep returns the newest open interval, or apperr.ErrNotFound.
func (db *DB) ActiveSleep(ctx context.Context, babyID string) (models.Sleep, error) {
	return queryOne(ctx, db.conn, scanSleep,
		`SELECT `+sleepCols+` FROM sleep_records WHERE baby_id = ? AND end_time IS NULL ORDER BY start_time DESC LIMIT 1`, babyID)
}

// EndSleep closes an open interval. An empty quality keeps the stored one.
// It fails with apperr.ErrConflict when the interval already has an end.
func (db *DB) EndSleep(ctx context.Context, babyID, id string, end time.Time, quality string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE sleep_records SET end_time = ?, quality = COALESCE(NULLIF(?, ''), quality)
		 WHERE id = ? AND baby_id = ? AND end_time IS NULL`,
		encodeTime(end), quality, id, babyID)
	if err != nil {
		return mapErr("end sleep", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapErr("end sleep", err)
	}
	if n == 1 {
		return nil
	}
	if _, err := db.GetSleep(ctx, babyID, id); err != nil {
		return err
	}
	return apperr.ErrConflict
}

func scanSleep(s scanner) (models.Sleep, error) {
	var (
		sl               models.Sleep
		start, createdAt string
		end              sql.NullString
	)
	if err := s.Scan(&sl.ID, &sl.BabyID, &start, &end, &sl.Quality, &sl.Note, &createdAt); err != nil {
		return sl, err
	}
	var err error
	if sl.StartTime, err = decodeTime(start); err != nil {
		return sl, err
	}
	if sl.EndTime, err = decodeNullTime(end); err != nil {
		return sl, err
	}
	if sl.CreatedAt, err = decodeTime(createdAt); err != nil {
		return sl, err
	}
	return sl, nil
}
