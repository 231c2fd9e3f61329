// Package store persists tracked records in SQLite.
//
// Instants are stored as fixed-width UTC text (millisecond precision) so that
// string comparison in range predicates equals chronological comparison.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/grapebaby/grape/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS babies (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	birth_date TEXT NOT NULL,
	gender     TEXT NOT NULL DEFAULT '',
	photo      TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS feedings (
	id         TEXT PRIMARY KEY,
	baby_id    TEXT NOT NULL REFERENCES babies(id),
	time       TEXT NOT NULL,
	type       TEXT NOT NULL,
	amount     REAL,
	duration   INTEGER,
	note       TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_feedings_baby_time ON feedings(baby_id, time);

CREATE TABLE IF NOT EXISTS sleep_records (
	id         TEXT PRIMARY KEY,
	baby_id    TEXT NOT NULL REFERENCES babies(id),
	start_time TEXT NOT NULL,
	end_time   TEXT,
	quality    TEXT NOT NULL DEFAULT '',
	note       TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sleep_baby_start ON sleep_records(baby_id, start_time);

CREATE TABLE IF NOT EXISTS diaper_records (
	id         TEXT PRIMARY KEY,
	baby_id    TEXT NOT NULL REFERENCES babies(id),
	time       TEXT NOT NULL,
	type       TEXT NOT NULL,
	color      TEXT NOT NULL DEFAULT '',
	note       TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_diaper_baby_time ON diaper_records(baby_id, time);

CREATE TABLE IF NOT EXISTS growth_records (
	id         TEXT PRIMARY KEY,
	baby_id    TEXT NOT NULL REFERENCES babies(id),
	date       TEXT NOT NULL,
	weight     REAL,
	height     REAL,
	head_circ  REAL,
	note       TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS vaccinations (
	id             TEXT PRIMARY KEY,
	baby_id        TEXT NOT NULL REFERENCES babies(id),
	name           TEXT NOT NULL,
	dose_number    INTEGER NOT NULL,
	scheduled_date TEXT NOT NULL,
	actual_date    TEXT,
	hospital       TEXT NOT NULL DEFAULT '',
	batch_number   TEXT NOT NULL DEFAULT '',
	note           TEXT NOT NULL DEFAULT '',
	created_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS doctor_visits (
	id           TEXT PRIMARY KEY,
	baby_id      TEXT NOT NULL REFERENCES babies(id),
	date         TEXT NOT NULL,
	hospital     TEXT NOT NULL,
	doctor       TEXT NOT NULL DEFAULT '',
	reason       TEXT NOT NULL,
	diagnosis    TEXT NOT NULL DEFAULT '',
	prescription TEXT NOT NULL DEFAULT '',
	note         TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS temperatures (
	id         TEXT PRIMARY KEY,
	baby_id    TEXT NOT NULL REFERENCES babies(id),
	time       TEXT NOT NULL,
	value      REAL NOT NULL,
	method     TEXT NOT NULL DEFAULT '',
	note       TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_temperatures_baby_time ON temperatures(baby_id, time);

CREATE TABLE IF NOT EXISTS milestones (
	id          TEXT PRIMARY KEY,
	baby_id     TEXT NOT NULL REFERENCES babies(id),
	date        TEXT NOT NULL,
	title       TEXT NOT NULL,
	category    TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	photo       TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS imports (
	path        TEXT PRIMARY KEY,
	checksum    TEXT NOT NULL,
	records     INTEGER NOT NULL,
	imported_at TEXT NOT NULL
);
`

// DB wraps a sql.DB with record operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func queryRows[T any](ctx context.Context, q querier, scan func(scanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func queryOne[T any](ctx context.Context, q querier, scan func(scanner) (T, error), query string, args ...any) (T, error) {
	v, err := scan(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, apperr.ErrNotFound
	}
	return v, err
}

// timeLayout is fixed width, so lexical order is chronological order.
const timeLayout = "2006-01-02T15:04:05.000Z"

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func encodeTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encodeTime(*t)
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: decode time %q: %w", s, err)
	}
	return t, nil
}

func decodeNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := decodeTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

func nullInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

// mapErr translates driver constraint failures into application errors.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
			return fmt.Errorf("store: %s: %w", op, apperr.ErrAlreadyExists)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("store: %s: unknown subject: %w", op, apperr.ErrInvalid)
		}
	}
	return fmt.Errorf("store: %s: %w", op, err)
}

// deleteRow removes one record of the subject; table is always a constant.
func deleteRow(ctx context.Context, q querier, table, babyID, id string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ? AND baby_id = ?`, id, babyID)
	if err != nil {
		return mapErr("delete "+table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapErr("delete "+table, err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
