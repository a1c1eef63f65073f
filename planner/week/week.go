// Package week groups teaching dates into Monday-start calendar weeks.
package week

import (
	"iter"
	"maps"
	"slices"
	"time"

	"github.com/cyp0633/termplan/planner/date"
)

// Groups maps a week index to the ascending dates falling in that week.
type Groups map[int][]date.Date

// mondayOf returns the Monday on or before d.
func mondayOf(d date.Date) date.Date {
	offset := (int(d.Weekday()) - int(time.Monday) + 7) % 7
	return d.AddDays(-offset)
}

// IndexOf returns the 1-based week of d counted from the week containing
// start. Dates before the start week give 0 or negative indices.
func IndexOf(d, start date.Date) int {
	// both are Mondays, so the span is a whole number of weeks
	return mondayOf(start).DaysUntil(mondayOf(d))/7 + 1
}

// Group partitions dates by IndexOf. Duplicates are dropped and each week
// holds its dates in ascending order.
func Group(dates []date.Date, start date.Date) Groups {
	sorted := slices.Clone(dates)
	slices.SortFunc(sorted, date.Date.Compare)
	sorted = slices.Compact(sorted)

	g := make(Groups)
	for _, d := range sorted {
		idx := IndexOf(d, start)
		g[idx] = append(g[idx], d)
	}
	return g
}

// Indices returns the week indices in ascending order.
func (g Groups) Indices() []int {
	return slices.Sorted(maps.Keys(g))
}

// All iterates weeks in ascending index order.
func (g Groups) All() iter.Seq2[int, []date.Date] {
	return func(yield func(int, []date.Date) bool) {
		for _, idx := range g.Indices() {
			if !yield(idx, g[idx]) {
				return
			}
		}
	}
}

// Len returns the number of non-empty weeks.
func (g Groups) Len() int { return len(g) }
