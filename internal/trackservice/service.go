// Package trackservice is the application layer: it turns form input into
// stored records, scopes store queries with civil day and month bounds, and
// feeds the results through the stats aggregations.
package trackservice

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/grapebaby/grape/internal/apperr"
	"github.com/grapebaby/grape/internal/civil"
	"github.com/grapebaby/grape/internal/metrics"
	"github.com/grapebaby/grape/internal/store"
)

// Subject is the single tracked baby, configured rather than managed.
type Subject struct {
	ID        string
	Name      string
	BirthDate civil.Date
	Gender    string
}

// Change actions reported to the ChangeFunc.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// ChangeFunc is called after every successful mutation. date is the civil
// date the record falls on, empty for deletions.
type ChangeFunc func(action, kind, id, date string)

// Service coordinates the store and the aggregation core.
type Service struct {
	store    store.Store
	subject  Subject
	off      civil.Offset
	now      func() time.Time
	newID    func() string
	onChange ChangeFunc
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithChangeFunc registers a mutation callback.
func WithChangeFunc(fn ChangeFunc) Option {
	return func(s *Service) { s.onChange = fn }
}

// New creates a service for subject, reading civil dates at off.
func New(st store.Store, subject Subject, off civil.Offset, opts ...Option) *Service {
	s := &Service{
		store:   st,
		subject: subject,
		off:     off,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Offset returns the offset civil dates are read at.
func (s *Service) Offset() civil.Offset { return s.off }

// Subject returns the configured subject.
func (s *Service) Subject() Subject { return s.subject }

// Today returns the current civil date.
func (s *Service) Today() civil.Date {
	return s.off.Today(s.now())
}

// ParseDateOrToday parses YYYY-MM-DD, or returns Today for an empty string.
func (s *Service) ParseDateOrToday(v string) (civil.Date, error) {
	if v == "" {
		return s.Today(), nil
	}
	return civil.ParseDate(v)
}

// ParseMonthOrCurrent parses YYYY-MM, or returns the current month for an
// empty string.
func (s *Service) ParseMonthOrCurrent(v string) (civil.Month, error) {
	if v == "" {
		return s.Today().YearMonth(), nil
	}
	return civil.ParseMonth(v)
}

// instant converts a form value at the service offset. An empty value means now.
func (s *Service) instant(field, v string) (time.Time, error) {
	if v == "" {
		return s.now().UTC(), nil
	}
	t, err := s.off.ToInstant(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return t, nil
}

// optionalInstant is instant for fields that stay unset when empty.
func (s *Service) optionalInstant(field, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := s.instant(field, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// dayInstant is instant for date-only fields. An empty value means the start of today.
func (s *Service) dayInstant(field, v string) (time.Time, error) {
	if v == "" {
		return s.off.DayStart(s.Today()), nil
	}
	return s.instant(field, v)
}

func (s *Service) dateKey(t time.Time) string {
	return s.off.DateOf(t).String()
}

func (s *Service) changed(action, kind, id, date string) {
	metrics.RecordWrite(kind, opName(action))
	if s.onChange != nil {
		s.onChange(action, kind, id, date)
	}
}

func opName(action string) string {
	switch action {
	case ChangeCreated:
		return "create"
	case ChangeUpdated:
		return "update"
	case ChangeDeleted:
		return "delete"
	}
	return action
}

// invalid wraps a validation failure so that it matches apperr.ErrInvalid.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s", apperr.ErrInvalid, err.Error())
}
