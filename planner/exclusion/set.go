// Package exclusion manages the set of dates a course marks as non-teaching.
//
// Every member remembers which rules excluded it (its provenance). Rules are
// applied and released independently, and a date leaves the set only when no
// rule holds it any more, except for Remove which drops it unconditionally.
package exclusion

import (
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/cyp0633/termplan/planner/date"
	"github.com/samber/mo"
)

// Source is a bit set of the rules that excluded a date.
type Source uint8

const (
	// Manual marks a date added one at a time
	Manual Source = 1 << iota
	// Range marks a date excluded by a bulk range
	Range
	// Holiday marks a date derived from the holiday registry
	Holiday
)

func (s Source) Has(flag Source) bool { return s&flag != 0 }

func (s Source) String() string {
	var parts []string
	if s.Has(Manual) {
		parts = append(parts, "manual")
	}
	if s.Has(Range) {
		parts = append(parts, "range")
	}
	if s.Has(Holiday) {
		parts = append(parts, "holiday")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// HolidayCalendar answers which holidays fall in a range.
// *holiday.Registry satisfies it.
type HolidayCalendar interface {
	InRange(start, end date.Date) []date.Date
}

// Set is the exclusion set of a single course. It is not safe for
// concurrent mutation.
type Set struct {
	members map[date.Date]Source
}

// New returns an empty set.
func New() *Set {
	return &Set{members: make(map[date.Date]Source)}
}

func (s *Set) mark(d date.Date, src Source) {
	if s.members == nil {
		s.members = make(map[date.Date]Source)
	}
	s.members[d] |= src
}

func (s *Set) release(d date.Date, src Source) {
	cur, ok := s.members[d]
	if !ok {
		return
	}
	cur &^= src
	if cur == 0 {
		delete(s.members, d)
		return
	}
	s.members[d] = cur
}

// Add excludes a single date. Adding an existing member is a no-op apart
// from recording the manual provenance.
func (s *Set) Add(d date.Date) {
	s.mark(d, Manual)
}

// Remove drops d whatever excluded it. Removing a non-member is a no-op.
func (s *Set) Remove(d date.Date) {
	delete(s.members, d)
}

// ExcludeRange excludes every date in [start, end] inclusive. An inverted
// range changes nothing.
func (s *Set) ExcludeRange(start, end date.Date) {
	for d := range date.Days(start, end) {
		s.mark(d, Range)
	}
}

// SetHolidays applies (enabled) or releases (disabled) the holiday rule for
// the holidays cal reports in [start, end]. Membership is recomputed from
// the bounds given on each call, so holiday exclusions applied under wider
// bounds and outside the current ones are left in place on release.
func (s *Set) SetHolidays(enabled bool, cal HolidayCalendar, start, end date.Date) {
	for _, d := range cal.InRange(start, end) {
		if enabled {
			s.mark(d, Holiday)
		} else {
			s.release(d, Holiday)
		}
	}
}

// Contains reports whether d is excluded.
func (s *Set) Contains(d date.Date) bool {
	_, ok := s.members[d]
	return ok
}

// Sources returns the provenance of d, absent when d is not excluded.
func (s *Set) Sources(d date.Date) mo.Option[Source] {
	if src, ok := s.members[d]; ok {
		return mo.Some(src)
	}
	return mo.None[Source]()
}

// Len returns the number of excluded dates.
func (s *Set) Len() int {
	return len(s.members)
}

// Dates returns the excluded dates in ascending order.
func (s *Set) Dates() []date.Date {
	return slices.SortedFunc(maps.Keys(s.members), date.Date.Compare)
}

// All yields excluded dates with their provenance in ascending date order.
func (s *Set) All() iter.Seq2[date.Date, Source] {
	return func(yield func(date.Date, Source) bool) {
		for _, d := range s.Dates() {
			if !yield(d, s.members[d]) {
				return
			}
		}
	}
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	return &Set{members: maps.Clone(s.members)}
}
