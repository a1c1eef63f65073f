// Package session ties a course, its ad-hoc teaching dates and topic notes
// into one planning session.
package session

import (
	"io"
	"log/slog"
	"slices"

	"github.com/cyp0633/termplan/planner/course"
	"github.com/cyp0633/termplan/planner/date"
	"github.com/cyp0633/termplan/planner/holiday"
	"github.com/cyp0633/termplan/planner/recurrence"
	"github.com/cyp0633/termplan/planner/topics"
	"github.com/cyp0633/termplan/planner/week"
)

// Session is one planning session. It is not safe for concurrent use.
type Session struct {
	course  *course.Course
	engine  *recurrence.Engine
	custom  []date.Date
	notes   *topics.Notes
	catalog *topics.Catalog
	logger  *slog.Logger
}

// Summary is the review-step digest of a session.
type Summary struct {
	CourseName      string          `json:"course_name"`
	CourseCode      string          `json:"course_code,omitempty"`
	Start           date.Date       `json:"start"`
	End             date.Date       `json:"end"`
	TeachingDays    int             `json:"teaching_days"`
	TotalWeeks      int             `json:"total_weeks"`
	SelectedDays    []string        `json:"selected_days"`
	ExcludedCount   int             `json:"excluded_count"`
	ExcludeHolidays bool            `json:"exclude_holidays"`
	RemovedHolidays []holiday.Entry `json:"removed_holidays"`
	CustomDates     []date.Date     `json:"custom_dates"`
	OrphanedTopics  []date.Date     `json:"orphaned_topics"`
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger for the session
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCatalog replaces the empty default catalog.
func WithCatalog(c *topics.Catalog) Option {
	return func(s *Session) {
		if c != nil {
			s.catalog = c
		}
	}
}

// New starts a session for c. A nil engine gets a default one.
func New(c *course.Course, eng *recurrence.Engine, opts ...Option) *Session {
	if eng == nil {
		eng = recurrence.NewEngine()
	}
	s := &Session{
		course:  c,
		engine:  eng,
		notes:   topics.NewNotes(),
		catalog: topics.NewCatalog(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Course() *course.Course { return s.course }
func (s *Session) Notes() *topics.Notes { return s.notes }
func (s *Session) Catalog() *topics.Catalog { return s.catalog }
func (s *Session) CustomDates() []date.Date { return slices.Clone(s.custom) }
func (s *Session) Schedule() []date.Date { return s.engine.Dates(s.course) }

// AddCustomDate adds an ad-hoc teaching date. Repeats are ignored.
func (s *Session) AddCustomDate(d date.Date) {
	i, found := slices.BinarySearchFunc(s.custom, d, date.Date.Compare)
	if found {
		return
	}
	s.custom = slices.Insert(s.custom, i, d)
	s.logger.Debug("custom date added", "date", d)
}

// RemoveCustomDate drops an ad-hoc date. Its topics stay in the notes.
func (s *Session) RemoveCustomDate(d date.Date) {
	i, found := slices.BinarySearchFunc(s.custom, d, date.Date.Compare)
	if !found {
		return
	}
	s.custom = slices.Delete(s.custom, i, i+1)
	s.logger.Debug("custom date removed", "date", d)
}

// Combined returns the ascending union of the generated schedule and the
// custom dates.
func (s *Session) Combined() []date.Date {
	all := append(s.Schedule(), s.custom...)
	slices.SortFunc(all, date.Date.Compare)
	return slices.Compact(all)
}

// Weeks groups Combined by week relative to the course start.
func (s *Session) Weeks() week.Groups {
	return week.Group(s.Combined(), s.course.Start())
}

// Summary computes the review statistics.
func (s *Session) Summary() Summary {
	combined := s.Combined()
	c := s.course

	totalWeeks := 0
	if n := c.Weekdays().Len(); n > 0 {
		totalWeeks = (len(combined) + n - 1) / n
	}

	return Summary{
		CourseName:      c.Name,
		CourseCode:      c.Code,
		Start:           c.Start(),
		End:             c.End(),
		TeachingDays:    len(combined),
		TotalWeeks:      totalWeeks,
		SelectedDays:    c.Weekdays().Names(),
		ExcludedCount:   len(c.ExcludedDates()),
		ExcludeHolidays: c.ExcludeHolidays(),
		RemovedHolidays: c.RemovedHolidays(),
		CustomDates:     s.CustomDates(),
		OrphanedTopics:  s.notes.Orphans(combined),
	}
}
