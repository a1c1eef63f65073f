// Package holiday holds the read-only holiday registry consulted when a
// course excludes national holidays.
package holiday

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"

	"github.com/cyp0633/termplan/planner/date"
	"github.com/samber/mo"
)

var (
	// ErrDuplicateHoliday is returned when two entries share a date
	ErrDuplicateHoliday = errors.New("duplicate holiday date")
	// ErrInvalidEntry is returned for entries without a date or name
	ErrInvalidEntry = errors.New("invalid holiday entry")
)

// Entry is a single (date, name) pair of the registry.
type Entry struct {
	Date date.Date `yaml:"date" json:"date"`
	Name string    `yaml:"name" json:"name"`
}

// Registry is an immutable date → name table. It is safe for concurrent use.
type Registry struct {
	names  map[date.Date]string
	sorted []date.Date
	digest string
}

// New builds a registry from the given entries.
func New(entries ...Entry) (*Registry, error) {
	r := &Registry{
		names:  make(map[date.Date]string, len(entries)),
		sorted: make([]date.Date, 0, len(entries)),
	}
	for _, e := range entries {
		if e.Date.IsZero() || e.Name == "" {
			return nil, fmt.Errorf("%w: %+v", ErrInvalidEntry, e)
		}
		if _, exists := r.names[e.Date]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateHoliday, e.Date)
		}
		r.names[e.Date] = e.Name
		r.sorted = append(r.sorted, e.Date)
	}
	slices.SortFunc(r.sorted, date.Date.Compare)

	h := sha256.New()
	for _, d := range r.sorted {
		fmt.Fprintf(h, "%s|", d)
	}
	r.digest = hex.EncodeToString(h.Sum(nil))
	return r, nil
}

// Digest identifies the set of holiday dates. Registries holding the same
// dates share a digest; names do not affect it.
func (r *Registry) Digest() string { return r.digest }

// Empty returns a registry with no holidays.
func Empty() *Registry {
	r, _ := New()
	return r
}

// IsHoliday reports whether d is in the registry.
func (r *Registry) IsHoliday(d date.Date) bool {
	_, ok := r.names[d]
	return ok
}

// NameOf returns the holiday name for d, if any.
func (r *Registry) NameOf(d date.Date) mo.Option[string] {
	if name, ok := r.names[d]; ok {
		return mo.Some(name)
	}
	return mo.None[string]()
}

// InRange returns the registry dates within [start, end], ascending.
func (r *Registry) InRange(start, end date.Date) []date.Date {
	if start.After(end) {
		return nil
	}
	lo, _ := slices.BinarySearchFunc(r.sorted, start, date.Date.Compare)
	var out []date.Date
	for _, d := range r.sorted[lo:] {
		if d.After(end) {
			break
		}
		out = append(out, d)
	}
	return out
}

// Entries returns a copy of all entries in ascending date order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.sorted))
	for i, d := range r.sorted {
		out[i] = Entry{Date: d, Name: r.names[d]}
	}
	return out
}

// Len returns the number of holidays.
func (r *Registry) Len() int {
	return len(r.sorted)
}
