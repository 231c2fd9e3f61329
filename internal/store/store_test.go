package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/grapebaby/grape/internal/apperr"
	"github.com/grapebaby/grape/internal/civil"
	"github.com/grapebaby/grape/internal/models"
	"github.com/grapebaby/grape/internal/testutil"
)

const subject = testutil.SubjectID

func ptr[T any](v T) *T { return &v }

func TestBabyRoundTrip(t *testing.T) {
	db := testutil.SeededDB(t)
	ctx := context.Background()

	b, err := db.GetBaby(ctx, subject)
	if err != nil {
		t.Fatalf("GetBaby: %v", err)
	}
	if b.Name != "小葡萄" || b.BirthDate != civil.MustParseDate("2026-01-06") {
		t.Errorf("baby = %+v", b)
	}

	b.Name = "葡萄"
	if err := db.UpsertBaby(ctx, *b); err != nil {
		t.Fatalf("UpsertBaby: %v", err)
	}
	b2, _ := db.GetBaby(ctx, subject)
	if b2.Name != "葡萄" {
		t.Errorf("name = %q, want updated", b2.Name)
	}

	if _, err := db.GetBaby(ctx, "nobody"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetBaby(missing) err = %v, want ErrNotFound", err)
	}
}

func TestFeedingsBetween_InclusiveBounds(t *testing.T) {
	db := testutil.SeededDB(t)
	ctx := context.Background()
	off := civil.ChinaStandardTime
	day := civil.MustParseDate("2026-03-15")
	from, to := off.DayStart(day), off.DayEnd(day)

	for i, ts := range []time.Time{
		from.Add(-time.Millisecond),
		from,
		testutil.Instant(t, "2026-03-14T23:30:00Z"),
		to,
		to.Add(time.Millisecond),
	} {
		err := db.InsertFeeding(ctx, models.Feeding{
			ID: string(rune('a' + i)), BabyID: subject, Time: ts, Type: models.FeedingFormula,
			Amount: ptr(100.0), CreatedAt: ts,
		})
		if err != nil {
			t.Fatalf("InsertFeeding: %v", err)
		}
	}

	got, err := db.FeedingsBetween(ctx, subject, from, to)
	if err != nil {
		t.Fatalf("FeedingsBetween: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d feedings, want 3", len(got))
	}
	if !got[0].Time.Equal(from) || !got[2].Time.Equal(to) {
		t.Errorf("bounds not inclusive: %v .. %v", got[0].Time, got[2].Time)
	}
	if got[1].Amount == nil || *got[1].Amount != 100 {
		t.Errorf("amount = %v", got[1].Amount)
	}
	if got[1].Duration != nil {
		t.Errorf("duration = %v, want nil", *got[1].Duration)
	}
}

func TestInsert_DuplicateAndUnknownSubject(t *testing.T) {
	db := testutil.SeededDB(t)
	ctx := context.Background()
	d := models.Diaper{ID: "d1", BabyID: subject, Time: time.Now(), Type: models.DiaperWet, CreatedAt: time.Now()}
	if err := db.InsertDiaper(ctx, d); err != nil {
		t.Fatalf("InsertDiaper: %v", err)
	}
	if err := db.InsertDiaper(ctx, d); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate err = %v, want ErrAlreadyExists", err)
	}
	d.ID, d.BabyID = "d2", "someone-else"
	if err := db.InsertDiaper(ctx, d); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("foreign subject err = %v, want ErrInvalid", err)
	}
}

func TestDelete(t *testing.T) {
	db := testutil.SeededDB(t)
	ctx := context.Background()
	m := models.Milestone{ID: "m1", BabyID: subject, Date: time.Now(), Title: "翻身", Category: models.MilestoneMotor, CreatedAt: time.Now()}
	if err := db.InsertMilestone(ctx, m); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteMilestone(ctx, "other", "m1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("delete for other subject err = %v, want ErrNotFound", err)
	}
	if err := db.DeleteMilestone(ctx, subject, "m1"); err != nil {
		t.Fatalf("DeleteMilestone: %v", err)
	}
	if err := db.DeleteMilestone(ctx, subject, "m1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestListMilestones_Category(t *testing.T) {
	db := testutil.SeededDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, cat := range []string{models.MilestoneMotor, models.MilestoneLanguage, models.MilestoneMotor} {
		m := models.Milestone{ID: fmt.Sprintf("m%d", i), BabyID: subject, Date: base.AddDate(0, 0, i), Title: "t", Category: cat, CreatedAt: base}
		if err := db.InsertMilestone(ctx, m); err != nil {
			t.Fatal(err)
		}
	}

	motor, err := db.ListMilestones(ctx, subject, models.MilestoneMotor)
	if err != nil {
		t.Fatalf("ListMilestones: %v", err)
	}
	if len(motor) != 2 || motor[0].ID != "m2" || motor[1].ID != "m0" {
		t.Errorf("motor = %+v", motor)
	}
	all, err := db.ListMilestones(ctx, subject, "")
	if err != nil {
		t.Fatalf("ListMilestones: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all = %d, want 3", len(all))
	}
}

func TestSleepLifecycle(t *testing.T) {
	db := testutil.SeededDB(t)
	ctx := context.Background()
	start := testutil.Instant(t, "2026-03-15T12:00:00Z")

	if _, err := db.ActiveSleep(ctx, subject); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("ActiveSleep on empty db err = %v", err)
	}
	if err := db.InsertSleep(ctx, models.Sleep{ID: "s1", BabyID: subject, StartTime: start, CreatedAt: start}); err != nil {
		t.Fatal(err)
	}
	active, err := db.ActiveSleep(ctx, subject)
	if err != nil {
		t.Fatalf("ActiveSleep: %v", err)
	}
	if active.ID != "s1" || active.EndTime != nil {
		t.Errorf("active = %+v", active)
	}

	end := start.Add(95 * time.Minute)
	if err := db.EndSleep(ctx, subject, "s1", end, "good"); err != nil {
		t.Fatalf("EndSleep: %v", err)
	}
	if err := db.EndSleep(ctx, subject, "s1", end, "good"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("second EndSleep err = %v, want ErrConflict", err)
	}
	if err := db.EndSleep(ctx, subject, "missing", end, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("EndSleep(missing) err = %v, want ErrNotFound", err)
	}

	got, err := db.GetSleep(ctx, subject, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if got.EndTime == nil || !got.EndTime.Equal(end) {
		t.Errorf("end = %v, want %v", got.EndTime, end)
	}
	if got.Quality != "good" {
		t.Errorf("quality = %q, want good", got.Quality)
	}
	if _, err := db.ActiveSleep(ctx, subject); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("ActiveSleep after end err = %v", err)
	}
}

func TestVaccinationUpdate(t *testing.T) {
	db := testutil.SeededDB(t)
	ctx := context.Background()
	v := models.Vaccination{ID: "v1", BabyID: subject, Name: "乙肝疫苗", DoseNumber: 1,
		ScheduledDate: testutil.Instant(t, "2026-01-05T16:00:00Z"), CreatedAt: time.Now()}
	if err := db.InsertVaccination(ctx, v); err != nil {
		t.Fatal(err)
	}
	v.ActualDate = ptr(testutil.Instant(t, "2026-01-06T02:00:00Z"))
	v.Hospital = "社区卫生服务中心"
	if err := db.UpdateVaccination(ctx, v); err != nil {
		t.Fatalf("UpdateVaccination: %v", err)
	}
	got, err := db.GetVaccination(ctx, subject, "v1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ActualDate == nil || got.Hospital != "社区卫生服务中心" {
		t.Errorf("vaccination = %+v", got)
	}
	v.ID = "missing"
	if err := db.UpdateVaccination(ctx, v); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("update missing err = %v", err)
	}
}

func TestTemperaturesSince(t *testing.T) {
	db := testutil.SeededDB(t)
	ctx := context.Background()
	base := testutil.Instant(t, "2026-03-15T00:00:00Z")
	for i, v := range []float64{36.5, 38.2, 37.0} {
		ts := base.Add(time.Duration(i) * 24 * time.Hour)
		if err := db.InsertTemperature(ctx, models.Temperature{ID: string(rune('a' + i)), BabyID: subject, Time: ts, Value: v, CreatedAt: ts}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := db.TemperaturesSince(ctx, subject, base.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Value != 37.0 {
		t.Errorf("got %+v, want newest first from day 2", got)
	}
}

func TestExportImport(t *testing.T) {
	src := testutil.SeededDB(t)
	ctx := context.Background()
	now := testutil.Instant(t, "2026-03-15T10:00:00Z")

	_ = src.InsertFeeding(ctx, models.Feeding{ID: "f1", BabyID: subject, Time: now, Type: models.FeedingFormula, Amount: ptr(90.0), CreatedAt: now})
	_ = src.InsertSleep(ctx, models.Sleep{ID: "s1", BabyID: subject, StartTime: now, EndTime: ptr(now.Add(time.Hour)), CreatedAt: now})
	_ = src.InsertGrowth(ctx, models.Growth{ID: "g1", BabyID: subject, Date: now, Weight: ptr(6.2), CreatedAt: now})
	_ = src.InsertDoctorVisit(ctx, models.DoctorVisit{ID: "dv1", BabyID: subject, Date: now, Hospital: "妇幼", Reason: "体检", CreatedAt: now})

	snap, err := src.Export(ctx, subject, now)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if snap.Baby == nil || snap.Count() != 4 {
		t.Fatalf("snapshot count = %d, baby = %v", snap.Count(), snap.Baby)
	}

	dst := testutil.TestDB(t)
	n, err := dst.Import(ctx, snap)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 4 {
		t.Errorf("imported %d, want 4", n)
	}
	// Importing twice replaces rather than duplicates.
	if _, err := dst.Import(ctx, snap); err != nil {
		t.Fatalf("re-Import: %v", err)
	}
	again, err := dst.Export(ctx, subject, now)
	if err != nil {
		t.Fatal(err)
	}
	if again.Count() != 4 || *again.GrowthRecords[0].Weight != 6.2 {
		t.Errorf("round trip mismatch: %+v", again)
	}
}

func TestImportLedger(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()
	meta := models.FileMetadata{Path: "inbox/a.json", Checksum: "abc"}
	if err := db.RecordImport(ctx, meta, 3, time.Now()); err != nil {
		t.Fatal(err)
	}
	meta.Checksum = "def"
	if err := db.RecordImport(ctx, meta, 4, time.Now()); err != nil {
		t.Fatal(err)
	}
	got, err := db.ImportChecksums(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got["inbox/a.json"] != "def" {
		t.Errorf("checksums = %v", got)
	}
}
