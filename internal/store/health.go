package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/grapebaby/grape/internal/apperr"
	"github.com/grapebaby/grape/internal/models"
)

const (
	growthCols      = `id, baby_id, date, weight, height, head_circ, note, created_at`
	vaccinationCols = `id, baby_id, name, dose_number, scheduled_date, actual_date, hospital, batch_number, note, created_at`
	visitCols       = `id, baby_id, date, hospital, doctor, reason, diagnosis, prescription, note, created_at`
	temperatureCols = `id, baby_id, time, value, method, note, created_at`
)

// InsertGrowth stores a measurement.
func (db *DB) InsertGrowth(ctx context.Context, g models.Growth) error {
	return insertGrowth(ctx, db.conn, "INSERT", g)
}

func insertGrowth(ctx context.Context, q querier, verb string, g models.Growth) error {
	_, err := q.ExecContext(ctx, verb+` INTO growth_records (`+growthCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.BabyID, encodeTime(g.Date), g.Weight, g.Height, g.HeadCirc, g.Note, encodeTime(g.CreatedAt))
	return mapErr("insert growth", err)
}

// DeleteGrowth removes a measurement of the subject.
func (db *DB) DeleteGrowth(ctx context.Context, babyID, id string) error {
	return deleteRow(ctx, db.conn, "growth_records", babyID, id)
}

// ListGrowth returns all measurements, oldest first.
func (db *DB) ListGrowth(ctx context.Context, babyID string) ([]models.Growth, error) {
	return listGrowth(ctx, db.conn, babyID)
}

func listGrowth(ctx context.Context, q querier, babyID string) ([]models.Growth, error) {
	return queryRows(ctx, q, scanGrowth,
		`SELECT `+growthCols+` FROM growth_records WHERE baby_id = ? ORDER BY date`, babyID)
}

func scanGrowth(s scanner) (models.Growth, error) {
	var (
		g                      models.Growth
		date, createdAt        string
		weight, height, circle sql.NullFloat64
	)
	if err := s.Scan(&g.ID, &g.BabyID, &date, &weight, &height, &circle, &g.Note, &createdAt); err != nil {
		return g, err
	}
	var err error
	if g.Date, err = decodeTime(date); err != nil {
		return g, err
	}
	if g.CreatedAt, err = decodeTime(createdAt); err != nil {
		return g, err
	}
	g.Weight, g.Height, g.HeadCirc = nullFloat(weight), nullFloat(height), nullFloat(circle)
	return g, nil
}

// InsertVaccination stores a dose.
func (db *DB) InsertVaccination(ctx context.Context, v models.Vaccination) error {
	return insertVaccination(ctx, db.conn, "INSERT", v)
}

func insertVaccination(ctx context.Context, q querier, verb string, v models.Vaccination) error {
	_, err := q.ExecContext(ctx, verb+` INTO vaccinations (`+vaccinationCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.BabyID, v.Name, v.DoseNumber, encodeTime(v.ScheduledDate), encodeTimePtr(v.ActualDate),
		v.Hospital, v.BatchNumber, v.Note, encodeTime(v.CreatedAt))
	return mapErr("insert vaccination", err)
}

// UpdateVaccination rewrites the administration fields of a dose.
func (db *DB) UpdateVaccination(ctx context.Context, v models.Vaccination) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE vaccinations SET actual_date = ?, hospital = ?, batch_number = ?, note = ?
		WHERE id = ? AND baby_id = ?
	`, encodeTimePtr(v.ActualDate), v.Hospital, v.BatchNumber, v.Note, v.ID, v.BabyID)
	if err != nil {
		return mapErr("update vaccination", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return mapErr("update vaccination", err)
	} else if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// GetVaccination returns one dose.
func (db *DB) GetVaccination(ctx context.Context, babyID, id string) (models.Vaccination, error) {
	return queryOne(ctx, db.conn, scanVaccination,
		`SELECT `+vaccinationCols+` FROM vaccinations WHERE id = ? AND baby_id = ?`, id, babyID)
}

// ListVaccinations returns all doses ordered by scheduled date.
func (db *DB) ListVaccinations(ctx context.Context, babyID string) ([]models.Vaccination, error) {
	return listVaccinations(ctx, db.conn, babyID)
}

func listVaccinations(ctx context.Context, q querier, babyID string) ([]models.Vaccination, error) {
	return queryRows(ctx, q, scanVaccination,
		`SELECT `+vaccinationCols+` FROM vaccinations WHERE baby_id = ? ORDER BY scheduled_date, name, dose_number`, babyID)
}

func scanVaccination(s scanner) (models.Vaccination, error) {
	var (
		v                    models.Vaccination
		scheduled, createdAt string
		actual               sql.NullString
	)
	if err := s.Scan(&v.ID, &v.BabyID, &v.Name, &v.DoseNumber, &scheduled, &actual,
		&v.Hospital, &v.BatchNumber, &v.Note, &createdAt); err != nil {
		return v, err
	}
	var err error
	if v.ScheduledDate, err = decodeTime(scheduled); err != nil {
		return v, err
	}
	if v.ActualDate, err = decodeNullTime(actual); err != nil {
		return v, err
	}
	if v.CreatedAt, err = decodeTime(createdAt); err != nil {
		return v, err
	}
	return v, nil
}

// InsertDoctorVisit stores a visit.
func (db *DB) InsertDoctorVisit(ctx context.Context, v models.DoctorVisit) error {
	return insertDoctorVisit(ctx, db.conn, "INSERT", v)
}

func insertDoctorVisit(ctx context.Context, q querier, verb string, v models.DoctorVisit) error {
	_, err := q.ExecContext(ctx, verb+` INTO doctor_visits (`+visitCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.BabyID, encodeTime(v.Date), v.Hospital, v.Doctor, v.Reason, v.Diagnosis, v.Prescription,
		v.Note, encodeTime(v.CreatedAt))
	return mapErr("insert doctor visit", err)
}

// DeleteDoctorVisit removes a visit of the subject.
func (db *DB) DeleteDoctorVisit(ctx context.Context, babyID, id string) error {
	return deleteRow(ctx, db.conn, "doctor_visits", babyID, id)
}

// ListDoctorVisits returns all visits, newest first.
func (db *DB) ListDoctorVisits(ctx context.Context, babyID string) ([]models.DoctorVisit, error) {
	return listDoctorVisits(ctx, db.conn, babyID)
}

func listDoctorVisits(ctx context.Context, q querier, babyID string) ([]models.DoctorVisit, error) {
	return queryRows(ctx, q, scanDoctorVisit,
		`SELECT `+visitCols+` FROM doctor_visits WHERE baby_id = ? ORDER BY date DESC`, babyID)
}

func scanDoctorVisit(s scanner) (models.DoctorVisit, error) {
	var (
		v               models.DoctorVisit
		date, createdAt string
	)
	if err := s.Scan(&v.ID, &v.BabyID, &date, &v.Hospital, &v.Doctor, &v.Reason, &v.Diagnosis,
		&v.Prescription, &v.Note, &createdAt); err != nil {
		return v, err
	}
	var err error
	if v.Date, err = decodeTime(date); err != nil {
		return v, err
	}
	if v.CreatedAt, err = decodeTime(createdAt); err != nil {
		return v, err
	}
	return v, nil
}

// InsertTemperature stores a reading.
func (db *DB) InsertTemperature(ctx context.Context, t models.Temperature) error {
	return insertTemperature(ctx, db.conn, "INSERT", t)
}

func insertTemperature(ctx context.Context, q querier, verb string, t models.Temperature) error {
	_, err := q.ExecContext(ctx, verb+` INTO temperatures (`+temperatureCols+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.BabyID, encodeTime(t.Time), t.Value, t.Method, t.Note, encodeTime(t.CreatedAt))
	return mapErr("insert temperature", err)
}

// DeleteTemperature removes a reading of the subject.
func (db *DB) DeleteTemperature(ctx context.Context, babyID, id string) error {
	return deleteRow(ctx, db.conn, "temperatures", babyID, id)
}

// TemperaturesSince returns readings taken at or after from, newest first.
func (db *DB) TemperaturesSince(ctx context.Context, babyID string, from time.Time) ([]models.Temperature, error) {
	return queryRows(ctx, db.conn, scanTemperature,
		`SELECT `+temperatureCols+` FROM temperatures WHERE baby_id = ? AND time >= ? ORDER BY time DESC`,
		babyID, encodeTime(from))
}

func scanTemperature(s scanner) (models.Temperature, error) {
	var (
		t             models.Temperature
		ts, createdAt string
	)
	if err := s.Scan(&t.ID, &t.BabyID, &ts, &t.Value, &t.Method, &t.Note, &createdAt); err != nil {
		return t, err
	}
	var err error
	if t.Time, err = decodeTime(ts); err != nil {
		return t, err
	}
	if t.CreatedAt, err = decodeTime(createdAt); err != nil {
		return t, err
	}
	return t, nil
}
