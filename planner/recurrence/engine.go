// Package recurrence derives the ordered teaching dates of a course.
package recurrence

import (
	"io"
	"iter"
	"log/slog"
	"slices"

	"github.com/cyp0633/termplan/planner/course"
	"github.com/cyp0633/termplan/planner/date"
	"github.com/teambition/rrule-go"
)

// indexed by time.Weekday
var rruleWeekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// Engine provides schedule generation for courses. The zero value is not
// usable; create one with NewEngine or NewEngineWithConfig.
type Engine struct {
	cache  *ScheduleCache
	config EngineConfig
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for the engine
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine with DefaultEngineConfig.
func NewEngine(opts ...Option) *Engine {
	return NewEngineWithConfig(DefaultEngineConfig, opts...)
}

// Generate yields the teaching dates of c in ascending order: every date in
// [start, end] whose weekday is selected, that is not in the exclusion set
// and, when the course excludes holidays, is not a registry holiday. The
// holiday check is re-derived here independently of the stored exclusions.
//
// The sequence is lazy and restartable, and reads the course when iterated.
// An inverted range or an empty weekday selection yields nothing.
func (e *Engine) Generate(c *course.Course) iter.Seq[date.Date] {
	return func(yield func(date.Date) bool) {
		next := e.candidates(c)
		if next == nil {
			return
		}
		for {
			t, ok := next()
			if !ok {
				return
			}
			d := date.FromTime(t)
			if e.isExcluded(c, d) {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}

// Dates returns the generated schedule as a slice. With caching enabled the
// result is memoised under the course fingerprint, so any mutation of the
// course's schedule inputs misses the cache.
func (e *Engine) Dates(c *course.Course) []date.Date {
	if e.cache == nil {
		return slices.Collect(e.Generate(c))
	}

	key := c.Fingerprint()
	if cached, ok := e.cache.Get(key); ok {
		e.logger.Debug("schedule cache hit", "course", c.Name, "dates", len(cached))
		return cached
	}

	dates := slices.Collect(e.Generate(c))
	e.cache.Set(key, dates)
	e.logger.Debug("schedule generated", "course", c.Name, "dates", len(dates))
	return slices.Clone(dates)
}

// Close stops the cache cleanup goroutine, if any.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// candidates walks the course range one calendar day at a time and keeps the
// selected weekdays. Dates are carried as UTC midnights so no zone or DST
// adjustment can shift a day.
func (e *Engine) candidates(c *course.Course) rrule.Next {
	start, end := c.Start(), c.End()
	if start.IsZero() || end.IsZero() || start.After(end) || c.Weekdays().Empty() {
		return nil
	}

	var byDay []rrule.Weekday
	for _, wd := range c.Weekdays().Days() {
		byDay = append(byDay, rruleWeekdays[wd])
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.DAILY,
		Dtstart:   start.Time(),
		Until:     end.Time(),
		Byweekday: byDay,
	})
	if err != nil {
		e.logger.Error("failed to build day walker", "course", c.Name, "start", start, "end", end, "error", err)
		return nil
	}
	return rule.Iterator()
}

// isExcluded checks the stored exclusion set and the holiday rule
func (e *Engine) isExcluded(c *course.Course, d date.Date) bool {
	if c.IsExcluded(d) {
		return true
	}
	return c.ExcludeHolidays() && c.Holidays().IsHoliday(d)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
