package store

import (
	"context"
	"time"

	"github.com/grapebaby/grape/internal/models"
)

const diaperCols = `id, baby_id, time, type, color, note, created_at`

// InsertDiaper stores a new diaper change.
func (db *DB) InsertDiaper(ctx context.Context, d models.Diaper) error {
	return insertDiaper(ctx, db.conn, "INSERT", d)
}

func insertDiaper(ctx context.Context, q querier, verb string, d models.Diaper) error {
	_, err := q.ExecContext(ctx, verb+` INTO diaper_records (`+diaperCols+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.BabyID, encodeTime(d.Time), d.Type, d.Color, d.Note, encodeTime(d.CreatedAt))
	return mapErr("insert diaper", err)
}

// DeleteDiaper removes a diaper change of the subject.
func (db *DB) DeleteDiaper(ctx context.Context, babyID, id string) error {
	return deleteRow(ctx, db.conn, "diaper_records", babyID, id)
}

// DiapersBetween returns changes with from <= time <= to, oldest first.
func (db *DB) DiapersBetween(ctx context.Context, babyID string, from, to time.Time) ([]models.Diaper, error) {
	return queryRows(ctx, db.conn, scanDiaper,
		`SELECT `+diaperCols+` FROM diaper_records WHERE baby_id = ? AND time >= ? AND time <= ? ORDER BY time`,
		babyID, encodeTime(from), encodeTime(to))
}

func scanDiaper(s scanner) (models.Diaper, error) {
	var (
		d             models.Diaper
		ts, createdAt string
	)
	if err := s.Scan(&d.ID, &d.BabyID, &ts, &d.Type, &d.Color, &d.Note, &createdAt); err != nil {
		return d, err
	}
	var err error
	if d.Time, err = decodeTime(ts); err != nil {
		return d, err
	}
	if d.CreatedAt, err = decodeTime(createdAt); err != nil {
		return d, err
	}
	return d, nil
}
