// Package sse implements a Server-Sent Events broker that tells open
// dashboards when records change.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"github.com/grapebaby/grape/internal/metrics"
)

// Event is one message on the stream.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// RecordChange describes one mutated record. Date is the civil date the
// record falls on, so clients can refresh just that day.
type RecordChange struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
	Date string `json:"date,omitempty"`
}

// SummaryUpdate lists the days whose summaries changed since the previous
// summary.updated event. All is set when a change could not be tied to a
// day (deletions), in which case every cached summary is stale.
type SummaryUpdate struct {
	Dates []string `json:"dates,omitempty"`
	All   bool     `json:"all,omitempty"`
}

// Record actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event types.
const (
	TypeSummaryUpdated = "summary.updated"
	recordTypePrefix   = "record."
)

const (
	clientBuffer      = 64
	keepAliveInterval = 25 * time.Second
)

type recordEventReq struct {
	action string
	change RecordChange
}

// Broker fans record changes out to connected clients.
//
// A single loop goroutine owns the client set and the pending summary
// dates; public methods talk to it over channels.
type Broker struct {
	summaryDelay time.Duration
	keepAlive    time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	recordCh      chan recordEventReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker. Every record change is sent at once; the
// matching summary.updated event is delayed by summaryDelay so that a burst
// of changes produces one event naming every affected day.
func NewBroker(summaryDelay time.Duration) *Broker {
	if summaryDelay <= 0 {
		summaryDelay = 2 * time.Second
	}

	b := &Broker{
		summaryDelay:  summaryDelay,
		keepAlive:     keepAliveInterval,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		recordCh:      make(chan recordEventReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var seq uint64

	pending := make(map[string]struct{})
	pendingAll := false
	var flushTimer *time.Timer
	var flushCh <-chan time.Time

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		seq++
		raw := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, event.Type, payload))

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Slow client; it misses this event.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			if flushTimer != nil {
				flushTimer.Stop()
			}
			for ch := range clients {
				close(ch)
			}
			metrics.SetSSEClients(0)
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}
			metrics.SetSSEClients(len(clients))

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
				metrics.SetSSEClients(len(clients))
			}

		case req := <-b.recordCh:
			broadcast(Event{Type: recordTypePrefix + req.action, Data: req.change})

			if req.change.Date == "" {
				pendingAll = true
			} else {
				pending[req.change.Date] = struct{}{}
			}
			if flushCh == nil {
				flushTimer = time.NewTimer(b.summaryDelay)
				flushCh = flushTimer.C
			}

		case <-flushCh:
			flushCh = nil
			update := SummaryUpdate{All: pendingAll}
			for d := range pending {
				update.Dates = append(update.Dates, d)
			}
			slices.Sort(update.Dates)
			broadcast(Event{Type: TypeSummaryUpdated, Data: update})
			clear(pending)
			pendingAll = false

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the loop and closes every client channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// PublishRecordEvent sends a record.<action> event and schedules a
// summary.updated event for change.Date. Unknown actions are ignored.
func (b *Broker) PublishRecordEvent(action string, change RecordChange) {
	switch action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return
	}
	if b.closed.Load() {
		return
	}
	select {
	case b.recordCh <- recordEventReq{action: action, change: change}:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). A comment line is
// written every keep-alive interval so idle proxies do not drop the stream.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(b.keepAlive)
	defer ping.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
