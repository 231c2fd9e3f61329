package store

import (
	"context"

	"github.com/grapebaby/grape/internal/civil"
	"github.com/grapebaby/grape/internal/models"
)

// UpsertBaby inserts the subject or refreshes its profile fields.
func (db *DB) UpsertBaby(ctx context.Context, b models.Baby) error {
	return upsertBaby(ctx, db.conn, b)
}

func upsertBaby(ctx context.Context, q querier, b models.Baby) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO babies (id, name, birth_date, gender, photo, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name       = excluded.name,
			birth_date = excluded.birth_date,
			gender     = excluded.gender,
			photo      = CASE WHEN excluded.photo = '' THEN babies.photo ELSE excluded.photo END
	`, b.ID, b.Name, b.BirthDate.String(), b.Gender, b.Photo, encodeTime(b.CreatedAt))
	return mapErr("upsert baby", err)
}

// GetBaby returns the subject row.
func (db *DB) GetBaby(ctx context.Context, id string) (*models.Baby, error) {
	return queryOne(ctx, db.conn, scanBaby,
		`SELECT id, name, birth_date, gender, photo, created_at FROM babies WHERE id = ?`, id)
}

func scanBaby(s scanner) (*models.Baby, error) {
	var (
		b                models.Baby
		birth, createdAt string
	)
	if err := s.Scan(&b.ID, &b.Name, &birth, &b.Gender, &b.Photo, &createdAt); err != nil {
		return nil, err
	}
	d, err := civil.ParseDate(birth)
	if err != nil {
		return nil, err
	}
	b.BirthDate = d
	if b.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	return &b, nil
}
