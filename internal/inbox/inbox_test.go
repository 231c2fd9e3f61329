package inbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grapebaby/grape/internal/civil"
	"github.com/grapebaby/grape/internal/stats"
	"github.com/grapebaby/grape/internal/testutil"
	"github.com/grapebaby/grape/internal/trackservice"
)

const jsonDoc = `{
  "exportDate": "2026-03-15T04:00:00.000Z",
  "baby": {"id": "old-id", "name": "小葡萄", "birthDate": "2026-01-06", "gender": "女", "createdAt": "2026-01-06T00:00:00Z"},
  "feedings": [
    {"id": "f1", "babyId": "old-id", "time": "2026-03-14T23:30:00.000Z", "type": "formula", "amount": 120, "createdAt": "2026-03-14T23:30:00Z"}
  ],
  "sleepRecords": [
    {"id": "s1", "babyId": "old-id", "startTime": "2026-03-15T01:00:00Z", "endTime": "2026-03-15T02:33:00Z", "createdAt": "2026-03-15T01:00:00Z"}
  ],
  "diaperRecords": []
}`

const yamlDoc = `exportDate: "2026-03-16T04:00:00Z"
diaperRecords:
  - id: d1
    time: "2026-03-15T16:10:00Z"
    type: both
    color: yellow
    createdAt: "2026-03-15T16:10:00Z"
temperatures:
  - id: t1
    time: "2026-03-15T20:00:00Z"
    value: 37.9
    method: ear
    createdAt: "2026-03-15T20:00:00Z"
`

type env struct {
	inbox *Inbox
	svc   *trackservice.Service
	dir   string
}

func newEnv(t *testing.T) env {
	t.Helper()
	db := testutil.SeededDB(t)
	dir, files := testutil.TestDataDir(t)
	now := testutil.Instant(t, "2026-03-16T04:00:00Z")
	svc := trackservice.New(db, trackservice.Subject{
		ID:        testutil.SubjectID,
		Name:      "小葡萄",
		BirthDate: civil.MustParseDate("2026-01-06"),
	}, civil.ChinaStandardTime, trackservice.WithClock(func() time.Time { return now }))
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return env{inbox: New(svc, db, files, logger), svc: svc, dir: dir}
}

func writeInbox(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, Dir), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, Dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func exists(dir, rel string) bool {
	_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel)))
	return err == nil
}

func TestDecode_YAMLMatchesJSONKeys(t *testing.T) {
	snap, err := Decode("x.yaml", []byte(yamlDoc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(snap.DiaperRecords) != 1 || snap.DiaperRecords[0].Color != "yellow" {
		t.Errorf("diapers = %+v", snap.DiaperRecords)
	}
	if len(snap.Temperatures) != 1 || snap.Temperatures[0].Value != 37.9 {
		t.Errorf("temperatures = %+v", snap.Temperatures)
	}
	want := time.Date(2026, 3, 15, 16, 10, 0, 0, time.UTC)
	if !snap.DiaperRecords[0].Time.Equal(want) {
		t.Errorf("time = %v, want %v", snap.DiaperRecords[0].Time, want)
	}
}

func TestDecode_Errors(t *testing.T) {
	if _, err := Decode("x.json", []byte("{")); err == nil {
		t.Error("expected error for truncated JSON")
	}
	if _, err := Decode("x.yml", []byte("feedings: [")); err == nil {
		t.Error("expected error for broken YAML")
	}
	if _, err := Decode("x.json", []byte(`{"baby": {"birthDate": "2026-02-30"}}`)); err == nil {
		t.Error("expected error for invalid birth date")
	}
}

func TestSync_ImportsAndMoves(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	writeInbox(t, e.dir, "export.json", jsonDoc)
	writeInbox(t, e.dir, "extra.yaml", yamlDoc)
	writeInbox(t, e.dir, "broken.json", "{")

	results, err := e.inbox.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	status := map[string]string{}
	for _, r := range results {
		status[filepath.Base(r.Path)] = r.Status
	}
	if status["export.json"] != StatusImported || status["extra.yaml"] != StatusImported || status["broken.json"] != StatusFailed {
		t.Errorf("status = %v", status)
	}

	if !exists(e.dir, "inbox/processed/export.json") || exists(e.dir, "inbox/export.json") {
		t.Error("export.json not moved to processed/")
	}
	if !exists(e.dir, "inbox/failed/broken.json") {
		t.Error("broken.json not moved to failed/")
	}

	day, err := e.svc.DayDetail(ctx, civil.MustParseDate("2026-03-15"))
	if err != nil {
		t.Fatal(err)
	}
	if len(day.Feedings) != 1 || day.Feedings[0].BabyID != testutil.SubjectID {
		t.Errorf("feedings = %+v", day.Feedings)
	}
	if day.Summary.SleepTotalHours != 1.6 {
		t.Errorf("sleep hours = %v, want 1.6", day.Summary.SleepTotalHours)
	}

	// 2026-03-15T16:10Z is 00:10 on the 16th.
	next, err := e.svc.DayDetail(ctx, civil.MustParseDate("2026-03-16"))
	if err != nil {
		t.Fatal(err)
	}
	if next.Summary.DiaperCount != 1 {
		t.Errorf("diapers on 16th = %d, want 1", next.Summary.DiaperCount)
	}
}

const reversedSleepDoc = `{
  "feedings": [
    {"id": "f9", "time": "2026-03-15T03:00:00Z", "type": "formula", "amount": 90, "createdAt": "2026-03-15T03:00:00Z"}
  ],
  "sleepRecords": [
    {"id": "s9", "startTime": "2026-03-15T05:00:00Z", "endTime": "2026-03-15T04:00:00Z", "createdAt": "2026-03-15T05:00:00Z"}
  ]
}`

func TestSync_RejectsReversedSleep(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	writeInbox(t, e.dir, "reversed.json", reversedSleepDoc)

	results, err := e.inbox.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(results) != 1 || results[0].Status != StatusFailed {
		t.Fatalf("results = %+v", results)
	}
	var ve *stats.ValidationError
	if !errors.As(results[0].Err, &ve) || ve.ID != "s9" {
		t.Errorf("err = %v, want validation error for s9", results[0].Err)
	}
	if !exists(e.dir, "inbox/failed/reversed.json") {
		t.Error("reversed.json not moved to failed/")
	}

	// Nothing from the rejected file was written, and the calendar still loads.
	month, err := civil.ParseMonth("2026-03")
	if err != nil {
		t.Fatal(err)
	}
	view, err := e.svc.MonthSummary(ctx, month)
	if err != nil {
		t.Fatalf("MonthSummary: %v", err)
	}
	if len(view.Days) != 0 {
		t.Errorf("days = %+v, want none", view.Days)
	}
}

func TestSync_SkipsAlreadyImported(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	writeInbox(t, e.dir, "export.json", jsonDoc)
	if _, err := e.inbox.Sync(ctx); err != nil {
		t.Fatal(err)
	}

	writeInbox(t, e.dir, "export.json", jsonDoc)
	results, err := e.inbox.Sync(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Status != StatusDuplicate {
		t.Errorf("results = %+v", results)
	}
	if exists(e.dir, "inbox/export.json") {
		t.Error("duplicate left in inbox")
	}
}

func TestSync_EmptyInbox(t *testing.T) {
	e := newEnv(t)
	results, err := e.inbox.Sync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("results = %+v", results)
	}
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_ImportsNewFile(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- e.inbox.Watch(ctx) }()
	time.Sleep(100 * time.Millisecond)

	writeInbox(t, e.dir, "dropped.json", jsonDoc)
	writeInbox(t, e.dir, "notes.txt", "ignored")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return exists(e.dir, "inbox/processed/dropped.json")
	}, "dropped file not imported by watcher")

	if !exists(e.dir, "inbox/notes.txt") {
		t.Error("non-document file was touched")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Watch did not stop")
	}
}
