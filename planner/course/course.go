// Package course holds the Course aggregate: the date range, weekday
// selection and exclusion rules a teaching schedule is derived from.
package course

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/cyp0633/termplan/planner/date"
	"github.com/cyp0633/termplan/planner/exclusion"
	"github.com/cyp0633/termplan/planner/holiday"
)

// Course is the aggregate root of a planning session. Mutate it only
// through its methods; it is not safe for concurrent use.
type Course struct {
	Name  string
	Code  string
	Notes string

	start           date.Date
	end             date.Date
	weekdays        date.WeekdaySet
	excluded        *exclusion.Set
	excludeHolidays bool
	holidays        *holiday.Registry
}

// Option configures a Course at construction.
type Option func(*Course)

func WithName(name string) Option { return func(c *Course) { c.Name = name } }
func WithCode(code string) Option { return func(c *Course) { c.Code = code } }
func WithNotes(notes string) Option { return func(c *Course) { c.Notes = notes } }

// WithRange sets the teaching range.
func WithRange(start, end date.Date) Option {
	return func(c *Course) {
		c.start, c.end = start, end
	}
}

// WithWeekdays sets the teaching weekdays.
func WithWeekdays(days ...time.Weekday) Option {
	return func(c *Course) {
		c.weekdays = date.Weekdays(days...)
	}
}

// New creates a course with an empty exclusion set. A nil registry is
// treated as one without holidays.
func New(reg *holiday.Registry, opts ...Option) *Course {
	if reg == nil {
		reg = holiday.Empty()
	}
	c := &Course{
		excluded: exclusion.New(),
		holidays: reg,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Course) Start() date.Date { return c.start }
func (c *Course) End() date.Date { return c.end }
func (c *Course) Weekdays() date.WeekdaySet { return c.weekdays }
func (c *Course) ExcludeHolidays() bool { return c.excludeHolidays }
func (c *Course) Holidays() *holiday.Registry { return c.holidays }
func (c *Course) IsExcluded(d date.Date) bool { return c.excluded.Contains(d) }
func (c *Course) ExcludedDates() []date.Date { return c.excluded.Dates() }
func (c *Course) Exclusions() *exclusion.Set { return c.excluded.Clone() }
func (c *Course) SetWeekdays(set date.WeekdaySet) { c.weekdays = set }

// SetRange changes the teaching range and re-synchronises the holiday rule
// against the new bounds. Holiday exclusions that fell inside the old range
// only are not touched.
func (c *Course) SetRange(start, end date.Date) {
	c.start, c.end = start, end
	c.excluded.SetHolidays(c.excludeHolidays, c.holidays, start, end)
}

// AddExcludedDate marks a single date as non-teaching.
func (c *Course) AddExcludedDate(d date.Date) {
	c.excluded.Add(d)
}

// RemoveExcludedDate makes d eligible for teaching again.
func (c *Course) RemoveExcludedDate(d date.Date) {
	c.excluded.Remove(d)
}

// ExcludeRange marks every date in [start, end] as non-teaching.
func (c *Course) ExcludeRange(start, end date.Date) {
	c.excluded.ExcludeRange(start, end)
}

// SetExcludeHolidays toggles the holiday rule for the course's current range.
func (c *Course) SetExcludeHolidays(enabled bool) {
	c.excludeHolidays = enabled
	c.excluded.SetHolidays(enabled, c.holidays, c.start, c.end)
}

// RemovedHolidays lists excluded dates that are registry holidays.
func (c *Course) RemovedHolidays() []holiday.Entry {
	var out []holiday.Entry
	for _, d := range c.excluded.Dates() {
		if name, ok := c.holidays.NameOf(d).Get(); ok {
			out = append(out, holiday.Entry{Date: d, Name: name})
		}
	}
	return out
}

// Fingerprint is a digest of every input the generated schedule depends
// on. Any mutation of range, weekdays, holiday flag or exclusions changes it.
func (c *Course) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d|%t|%s", c.start, c.end, c.weekdays, c.excludeHolidays, c.holidays.Digest())
	for _, d := range c.excluded.Dates() {
		fmt.Fprintf(h, "|%s", d)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
