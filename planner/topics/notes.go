// Package topics associates topic labels with teaching dates and keeps the
// course's syllabus catalog.
package topics

import (
	"maps"
	"slices"
	"strings"

	"github.com/cyp0633/termplan/planner/date"
)

// Notes maps dates to ordered topic labels. Entries may outlive the date
// they were written for; see Orphans. The zero value is ready to use.
type Notes struct {
	byDate map[date.Date][]string
}

// NewNotes returns empty notes.
func NewNotes() *Notes {
	return &Notes{byDate: make(map[date.Date][]string)}
}

// Set replaces the labels for d. Duplicate labels keep their first
// occurrence and an empty list clears the date.
func (n *Notes) Set(d date.Date, labels []string) {
	var out []string
	for _, l := range labels {
		if !slices.Contains(out, l) {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		delete(n.byDate, d)
		return
	}
	if n.byDate == nil {
		n.byDate = make(map[date.Date][]string)
	}
	n.byDate[d] = out
}

// Of returns a copy of the labels for d, or nil.
func (n *Notes) Of(d date.Date) []string {
	return slices.Clone(n.byDate[d])
}

// Add appends label to d unless already present.
func (n *Notes) Add(d date.Date, label string) {
	cur := n.byDate[d]
	if slices.Contains(cur, label) {
		return
	}
	n.Set(d, append(slices.Clone(cur), label))
}

// Remove drops label from d.
func (n *Notes) Remove(d date.Date, label string) {
	cur := n.byDate[d]
	i := slices.Index(cur, label)
	if i < 0 {
		return
	}
	n.Set(d, slices.Delete(slices.Clone(cur), i, i+1))
}

// Joined returns the labels of d joined with sep, or fallback when d has
// none.
func (n *Notes) Joined(d date.Date, sep, fallback string) string {
	labels := n.byDate[d]
	if len(labels) == 0 {
		return fallback
	}
	return strings.Join(labels, sep)
}

// Dates returns every date carrying labels, ascending.
func (n *Notes) Dates() []date.Date {
	return slices.SortedFunc(maps.Keys(n.byDate), date.Date.Compare)
}

// Orphans returns the annotated dates that are not in known, ascending.
func (n *Notes) Orphans(known []date.Date) []date.Date {
	var out []date.Date
	for _, d := range n.Dates() {
		if !slices.Contains(known, d) {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of annotated dates.
func (n *Notes) Len() int { return len(n.byDate) }
