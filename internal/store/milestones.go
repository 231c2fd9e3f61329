package store

import (
	"context"

	"github.com/grapebaby/grape/internal/models"
)

const milestoneCols = `id, baby_id, date, title, category, description, photo, created_at`

// InsertMilestone stores a milestone.
func (db *DB) InsertMilestone(ctx context.Context, m models.Milestone) error {
	return insertMilestone(ctx, db.conn, "INSERT", m)
}

func insertMilestone(ctx context.Context, q querier, verb string, m models.Milestone) error {
	_, err := q.ExecContext(ctx, verb+` INTO milestones (`+milestoneCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.BabyID, encodeTime(m.Date), m.Title, m.Category, m.Description, m.Photo, encodeTime(m.CreatedAt))
	return mapErr("insert milestone", err)
}

// DeleteMilestone removes a milestone of the subject.
func (db *DB) DeleteMilestone(ctx context.Context, babyID, id string) error {
	return deleteRow(ctx, db.conn, "milestones", babyID, id)
}

// ListMilestones returns the milestones in category, or all of them when
// category is empty, newest first.
func (db *DB) ListMilestones(ctx context.Context, babyID, category string) ([]models.Milestone, error) {
	return listMilestones(ctx, db.conn, babyID, category)
}

func listMilestones(ctx context.Context, q querier, babyID, category string) ([]models.Milestone, error) {
	return queryRows(ctx, q, scanMilestone,
		`SELECT `+milestoneCols+` FROM milestones WHERE baby_id = ? AND (? = '' OR category = ?) ORDER BY date DESC`,
		babyID, category, category)
}

func scanMilestone(s scanner) (models.Milestone, error) {
	var (
		m               models.Milestone
		date, createdAt string
	)
	if err := s.Scan(&m.ID, &m.BabyID, &date, &m.Title, &m.Category, &m.Description, &m.Photo, &createdAt); err != nil {
		return m, err
	}
	var err error
	if m.Date, err = decodeTime(date); err != nil {
		return m, err
	}
	if m.CreatedAt, err = decodeTime(createdAt); err != nil {
		return m, err
	}
	return m, nil
}
