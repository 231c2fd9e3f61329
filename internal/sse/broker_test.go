package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func next(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg := <-ch:
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
		return ""
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestRecordEventDelivery(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishRecordEvent(ActionCreated, RecordChange{Kind: "feeding", ID: "f1", Date: "2026-03-15"})

	s := next(t, ch)
	if !strings.HasPrefix(s, "id: 1\n") {
		t.Errorf("missing event id in %q", s)
	}
	if !strings.Contains(s, "event: record.created") {
		t.Errorf("missing event type in %q", s)
	}
	if !strings.Contains(s, `"id":"f1"`) || !strings.Contains(s, `"date":"2026-03-15"`) {
		t.Errorf("missing data in %q", s)
	}
}

func TestSummaryCoalescesBurst(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishRecordEvent(ActionCreated, RecordChange{Kind: "feeding", ID: "a", Date: "2026-03-15"})
	b.PublishRecordEvent(ActionUpdated, RecordChange{Kind: "sleep", ID: "b", Date: "2026-03-14"})
	b.PublishRecordEvent(ActionCreated, RecordChange{Kind: "diaper", ID: "c", Date: "2026-03-15"})
	// Unknown actions are dropped.
	b.PublishRecordEvent("renamed", RecordChange{Kind: "diaper", ID: "d"})

	for i := 0; i < 3; i++ {
		if s := next(t, ch); !strings.Contains(s, "event: record.") {
			t.Fatalf("event %d = %q, want a record event", i, s)
		}
	}

	s := next(t, ch)
	if !strings.Contains(s, "event: summary.updated") {
		t.Fatalf("want summary.updated, got %q", s)
	}
	if !strings.Contains(s, `"dates":["2026-03-14","2026-03-15"]`) {
		t.Errorf("summary should list each affected day once: %q", s)
	}
	if strings.Contains(s, `"all"`) {
		t.Errorf("summary should not be marked all: %q", s)
	}

	select {
	case msg := <-ch:
		t.Fatalf("unexpected extra event %q", msg)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSummaryAfterDeletionMarksAll(t *testing.T) {
	b := NewBroker(50 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishRecordEvent(ActionDeleted, RecordChange{Kind: "feeding", ID: "a"})
	if s := next(t, ch); !strings.Contains(s, "event: record.deleted") {
		t.Fatalf("want record.deleted, got %q", s)
	}
	if s := next(t, ch); !strings.Contains(s, `"all":true`) {
		t.Fatalf("want all summary, got %q", s)
	}

	// A later burst starts a fresh window.
	b.PublishRecordEvent(ActionCreated, RecordChange{Kind: "feeding", ID: "b", Date: "2026-03-16"})
	next(t, ch)
	s := next(t, ch)
	if !strings.Contains(s, `{"dates":["2026-03-16"]}`) {
		t.Fatalf("second summary = %q", s)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()
	b.keepAlive = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishRecordEvent(ActionUpdated, RecordChange{Kind: "vaccination", ID: "v1", Date: "2026-03-15"})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "event: record.updated") {
		t.Errorf("handler output missing event: %q", body)
	}
	if !strings.Contains(body, ": ping\n\n") {
		t.Errorf("handler output missing keep-alive: %q", body)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < clientBuffer+10; i++ {
		b.PublishRecordEvent(ActionCreated, RecordChange{Kind: "diaper", ID: "x", Date: "2026-03-15"})
	}
	deadline := time.Now().Add(time.Second)
	for len(ch) < clientBuffer && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if len(ch) != clientBuffer {
		t.Errorf("buffered = %d, want %d", len(ch), clientBuffer)
	}
	// The loop is still responsive.
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Safe no-ops after close.
	b.PublishRecordEvent(ActionUpdated, RecordChange{Kind: "sleep", ID: "s1"})
	b.Unsubscribe(ch)
	if _, ok := <-b.Subscribe(); ok {
		t.Fatal("subscribe after close should return a closed channel")
	}
}
