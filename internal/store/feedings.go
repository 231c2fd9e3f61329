package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/grapebaby/grape/internal/models"
)

const feedingCols = `id, baby_id, time, type, amount, duration, note, created_at`

// InsertFeeding stores a new feeding.
func (db *DB) InsertFeeding(ctx context.Context, f models.Feeding) error {
	return insertFeeding(ctx, db.conn, "INSERT", f)
}

func insertFeeding(ctx context.Context, q querier, verb string, f models.Feeding) error {
	_, err := q.ExecContext(ctx, verb+` INTO feedings (`+feedingCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.BabyID, encodeTime(f.Time), f.Type, f.Amount, f.Duration, f.Note, encodeTime(f.CreatedAt))
	return mapErr("insert feeding", err)
}

// DeleteFeeding removes a feeding of the subject.
func (db *DB) DeleteFeeding(ctx context.Context, babyID, id string) error {
	return deleteRow(ctx, db.conn, "feedings", babyID, id)
}

// FeedingsBetween returns feedings with from <= time <= to, oldest first.
func (db *DB) FeedingsBetween(ctx context.Context, babyID string, from, to time.Time) ([]models.Feeding, error) {
	return queryRows(ctx, db.conn, scanFeeding,
		`SELECT `+feedingCols+` FROM feedings WHERE baby_id = ? AND time >= ? AND time <= ? ORDER BY time`,
		babyID, encodeTime(from), encodeTime(to))
}

// RecentFeedings returns the newest feedings, newest first.
func (db *DB) RecentFeedings(ctx context.Context, babyID string, limit int) ([]models.Feeding, error) {
	return queryRows(ctx, db.conn, scanFeeding,
		`SELECT `+feedingCols+` FROM feedings WHERE baby_id = ? ORDER BY time DESC LIMIT ?`, babyID, limit)
}

func scanFeeding(s scanner) (models.Feeding, error) {
	var (
		f             models.Feeding
		ts, createdAt string
		amount        sql.NullFloat64
		duration      sql.NullInt64
	)
	if err := s.Scan(&f.ID, &f.BabyID, &ts, &f.Type, &amount, &duration, &f.Note, &createdAt); err != nil {
		return f, err
	}
	var err error
	if f.Time, err = decodeTime(ts); err != nil {
		return f, err
	}
	if f.CreatedAt, err = decodeTime(createdAt); err != nil {
		return f, err
	}
	f.Amount = nullFloat(amount)
	f.Duration = nullInt(duration)
	return f, nil
}
