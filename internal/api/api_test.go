package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/grapebaby/grape/internal/civil"
	"github.com/grapebaby/grape/internal/models"
	"github.com/grapebaby/grape/internal/testutil"
	"github.com/grapebaby/grape/internal/trackservice"
)

// testEnv sets up a seeded SQLite DB, a service whose clock reads
// 2026-03-15 12:00 at +08:00, and the router.
func testEnv(t *testing.T) http.Handler {
	t.Helper()
	return testEnvWithSSE(t, nil)
}

func testEnvWithSSE(t *testing.T, sseHandler http.Handler) http.Handler {
	t.Helper()
	db := testutil.SeededDB(t)
	now := testutil.Instant(t, "2026-03-15T04:00:00Z")
	svc := trackservice.New(db, trackservice.Subject{
		ID:        testutil.SubjectID,
		Name:      "小葡萄",
		BirthDate: civil.MustParseDate("2026-01-06"),
		Gender:    "女",
	}, civil.ChinaStandardTime, trackservice.WithClock(func() time.Time { return now }))
	return NewRouter(svc, sseHandler)
}

func do(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		req = httptest.NewRequest(method, target, bytes.NewReader(b))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateAndListFeedings(t *testing.T) {
	router := testEnv(t)

	w := do(t, router, http.MethodPost, "/feedings", map[string]any{"time": "2026-03-15T07:30", "type": "formula", "amount": 120})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created models.Feeding
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if want := testutil.Instant(t, "2026-03-14T23:30:00Z"); !created.Time.Equal(want) {
		t.Errorf("time = %v, want %v", created.Time, want)
	}

	w = do(t, router, http.MethodGet, "/feedings?date=2026-03-15", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list FeedingListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Feedings) != 1 || list.Feedings[0].ID != created.ID {
		t.Errorf("feedings = %+v", list.Feedings)
	}

	w = do(t, router, http.MethodGet, "/feedings?date=2026-03-14", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Feedings) != 0 {
		t.Errorf("previous day feedings = %d, want 0", len(list.Feedings))
	}

	w = do(t, router, http.MethodGet, "/feedings", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Date != "2026-03-15" || len(list.Feedings) != 1 {
		t.Errorf("default day = %q with %d feedings", list.Date, len(list.Feedings))
	}
}

func TestCreateFeeding_BadRequest(t *testing.T) {
	router := testEnv(t)
	tests := []struct {
		name string
		body any
	}{
		{"unknown type", map[string]any{"type": "juice"}},
		{"malformed time", map[string]any{"type": "formula", "time": "yesterday"}},
		{"out of range time", map[string]any{"type": "formula", "time": "2026-02-30T08:00"}},
		{"negative amount", map[string]any{"type": "formula", "amount": -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/feedings", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body = %s", w.Code, w.Body.String())
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/feedings", strings.NewReader("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid JSON = %d, want 400", w.Code)
	}
}

func TestListFeedings_BadDate(t *testing.T) {
	router := testEnv(t)
	w := do(t, router, http.MethodGet, "/feedings?date=2026-13-01", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDeleteRecord(t *testing.T) {
	router := testEnv(t)

	w := do(t, router, http.MethodPost, "/diapers", map[string]any{"type": "wet"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d, body = %s", w.Code, w.Body.String())
	}
	var d models.Diaper
	_ = json.Unmarshal(w.Body.Bytes(), &d)

	if w := do(t, router, http.MethodDelete, "/diapers/"+d.ID, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/diapers/"+d.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestSleepEndpoints(t *testing.T) {
	router := testEnv(t)

	w := do(t, router, http.MethodPost, "/sleeps", map[string]any{"startTime": "2026-03-15T09:00"})
	if w.Code != http.StatusCreated {
		t.Fatalf("start = %d, body = %s", w.Code, w.Body.String())
	}
	var sl models.Sleep
	_ = json.Unmarshal(w.Body.Bytes(), &sl)

	w = do(t, router, http.MethodGet, "/sleeps/active", nil)
	var active ActiveSleepResponse
	_ = json.Unmarshal(w.Body.Bytes(), &active)
	if active.Sleep == nil || active.Sleep.ID != sl.ID {
		t.Fatalf("active = %+v", active.Sleep)
	}

	if w := do(t, router, http.MethodPost, "/sleeps/"+sl.ID+"/end", map[string]any{"endTime": "2026-03-15T08:00"}); w.Code != http.StatusBadRequest {
		t.Errorf("end before start = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/sleeps/"+sl.ID+"/end", map[string]any{"endTime": "2026-03-15T10:30"}); w.Code != http.StatusOK {
		t.Errorf("end = %d, body = %s", w.Code, w.Body.String())
	}
	if w := do(t, router, http.MethodPost, "/sleeps/"+sl.ID+"/end", nil); w.Code != http.StatusConflict {
		t.Errorf("second end = %d, want 409", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/sleeps/missing/end", nil); w.Code != http.StatusNotFound {
		t.Errorf("end missing = %d, want 404", w.Code)
	}

	w = do(t, router, http.MethodGet, "/sleeps/active", nil)
	active = ActiveSleepResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &active)
	if active.Sleep != nil {
		t.Errorf("active after end = %+v", active.Sleep)
	}
}

func TestCalendarMonth(t *testing.T) {
	router := testEnv(t)
	for _, ts := range []string{"2026-03-15T00:10", "2026-03-14T23:50"} {
		if w := do(t, router, http.MethodPost, "/feedings", map[string]any{"time": ts, "type": "formula", "amount": 90}); w.Code != http.StatusCreated {
			t.Fatalf("create = %d", w.Code)
		}
	}

	w := do(t, router, http.MethodGet, "/calendar/month?month=2026-03", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("month = %d, body = %s", w.Code, w.Body.String())
	}
	var view struct {
		Month string                    `json:"month"`
		Days  map[string]map[string]any `json:"days"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &view)
	if view.Month != "2026-03" {
		t.Errorf("month = %q", view.Month)
	}
	if len(view.Days) != 2 {
		t.Fatalf("days = %v, want 2 keys", view.Days)
	}
	if got := view.Days["2026-03-15"]["feedingCount"]; got != 1.0 {
		t.Errorf("2026-03-15 feedingCount = %v", got)
	}

	for _, bad := range []string{"2026-13", "2026-3", "march"} {
		if w := do(t, router, http.MethodGet, "/calendar/month?month="+bad, nil); w.Code != http.StatusBadRequest {
			t.Errorf("month=%s status = %d, want 400", bad, w.Code)
		}
	}
}

func TestCalendarTrends(t *testing.T) {
	router := testEnv(t)
	tests := []struct {
		rng  string
		want int
	}{
		{"7", 7},
		{"90", 90},
		{"", 30},
		{"bogus", 30},
	}
	for _, tt := range tests {
		w := do(t, router, http.MethodGet, "/calendar/trends?range="+tt.rng, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("range=%s status = %d", tt.rng, w.Code)
		}
		var tr struct {
			Feeding []struct {
				Date string `json:"date"`
				Day  string `json:"day"`
			} `json:"feeding"`
		}
		_ = json.Unmarshal(w.Body.Bytes(), &tr)
		if len(tr.Feeding) != tt.want {
			t.Errorf("range=%s buckets = %d, want %d", tt.rng, len(tr.Feeding), tt.want)
			continue
		}
		last := tr.Feeding[len(tr.Feeding)-1]
		if last.Date != "2026-03-15" || last.Day != "3/15" {
			t.Errorf("range=%s last bucket = %+v", tt.rng, last)
		}
	}
}

func TestDashboardAndBaby(t *testing.T) {
	router := testEnv(t)
	w := do(t, router, http.MethodGet, "/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard = %d, body = %s", w.Code, w.Body.String())
	}
	var dash struct {
		Today        map[string]any   `json:"today"`
		FeedingTrend []map[string]any `json:"feedingTrend"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &dash)
	if dash.Today["date"] != "2026-03-15" {
		t.Errorf("today = %v", dash.Today["date"])
	}
	if len(dash.FeedingTrend) != 7 {
		t.Errorf("feedingTrend len = %d, want 7", len(dash.FeedingTrend))
	}

	w = do(t, router, http.MethodGet, "/baby", nil)
	var p trackservice.Profile
	_ = json.Unmarshal(w.Body.Bytes(), &p)
	if p.Name != "小葡萄" || p.AgeMonths != 2 {
		t.Errorf("baby = %+v", p)
	}
}

func TestVaccinationEndpoints(t *testing.T) {
	router := testEnv(t)

	w := do(t, router, http.MethodPost, "/vaccinations", map[string]any{"name": "卡介苗", "doseNumber": 1, "actualDate": "2026-01-07"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d, body = %s", w.Code, w.Body.String())
	}
	var v models.Vaccination
	_ = json.Unmarshal(w.Body.Bytes(), &v)

	if w := do(t, router, http.MethodPatch, "/vaccinations/"+v.ID, map[string]any{"actualDate": "2026-01-08", "hospital": "妇幼保健院"}); w.Code != http.StatusOK {
		t.Errorf("patch = %d, body = %s", w.Code, w.Body.String())
	}
	if w := do(t, router, http.MethodPatch, "/vaccinations/missing", map[string]any{}); w.Code != http.StatusNotFound {
		t.Errorf("patch missing = %d, want 404", w.Code)
	}

	w = do(t, router, http.MethodPatch, "/vaccinations/"+v.ID, map[string]any{"note": "左臂"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch note = %d, body = %s", w.Code, w.Body.String())
	}
	var patched models.Vaccination
	_ = json.Unmarshal(w.Body.Bytes(), &patched)
	if patched.ActualDate == nil || patched.Hospital != "妇幼保健院" || patched.Note != "左臂" {
		t.Errorf("note-only patch lost fields: %+v", patched)
	}

	w = do(t, router, http.MethodGet, "/vaccinations/schedule", nil)
	var view trackservice.ScheduleView
	_ = json.Unmarshal(w.Body.Bytes(), &view)
	if view.Counts["completed"] != 1 {
		t.Errorf("counts = %v", view.Counts)
	}
}

func TestTemperatureEndpoints(t *testing.T) {
	router := testEnv(t)
	if w := do(t, router, http.MethodPost, "/temperatures", map[string]any{"time": "2026-03-15T08:00", "value": 39.1}); w.Code != http.StatusCreated {
		t.Fatalf("create = %d, body = %s", w.Code, w.Body.String())
	}
	w := do(t, router, http.MethodGet, "/temperatures", nil)
	var list struct {
		Days         int `json:"days"`
		Temperatures []struct {
			Band string `json:"band"`
		} `json:"temperatures"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Days != 7 || len(list.Temperatures) != 1 || list.Temperatures[0].Band != "high_fever" {
		t.Errorf("list = %+v", list)
	}
}

func TestListMilestones_FilterByCategory(t *testing.T) {
	router := testEnv(t)
	for _, m := range []map[string]any{
		{"title": "会笑了", "category": "social", "date": "2026-02-20"},
		{"title": "抬头", "category": "motor", "date": "2026-03-01"},
		{"title": "翻身", "category": "motor", "date": "2026-03-12"},
	} {
		if w := do(t, router, http.MethodPost, "/milestones", m); w.Code != http.StatusCreated {
			t.Fatalf("create = %d, body = %s", w.Code, w.Body.String())
		}
	}

	w := do(t, router, http.MethodGet, "/milestones?category=motor", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d, body = %s", w.Code, w.Body.String())
	}
	var list MilestoneListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Milestones) != 2 || list.Milestones[0].Title != "翻身" || list.Milestones[1].Title != "抬头" {
		t.Errorf("motor milestones = %+v", list.Milestones)
	}

	w = do(t, router, http.MethodGet, "/milestones", nil)
	list = MilestoneListResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Milestones) != 3 {
		t.Errorf("all milestones = %d, want 3", len(list.Milestones))
	}

	if w := do(t, router, http.MethodGet, "/milestones?category=sports", nil); w.Code != http.StatusBadRequest {
		t.Errorf("unknown category status = %d, want 400", w.Code)
	}
}

func TestExportAttachment(t *testing.T) {
	router := testEnv(t)
	if w := do(t, router, http.MethodPost, "/milestones", map[string]any{"title": "会笑了", "category": "social"}); w.Code != http.StatusCreated {
		t.Fatalf("create = %d, body = %s", w.Code, w.Body.String())
	}

	w := do(t, router, http.MethodGet, "/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export = %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "grape-export-2026-03-15.json") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Baby == nil || len(snap.Milestones) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestSSEEventsMounted(t *testing.T) {
	sseHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})
	router := testEnvWithSSE(t, sseHandler)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestUnknownRoute(t *testing.T) {
	router := testEnv(t)
	if w := do(t, router, http.MethodGet, "/notes", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown route = %d, want 404", w.Code)
	}
}
