package holiday

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cyp0633/termplan/planner/date"
	"github.com/emersion/go-ical"
	"gopkg.in/yaml.v3"
)

// LoadYAML reads a list of {date, name} entries.
//
//	- date: 2025-01-26
//	  name: Republic Day
func LoadYAML(r io.Reader) (*Registry, error) {
	var entries []Entry
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode holiday yaml: %w", err)
	}
	return New(entries...)
}

// LoadICS reads holidays from an iCalendar stream. Every VEVENT contributes
// the calendar date of its DTSTART, named by its SUMMARY.
func LoadICS(r io.Reader) (*Registry, error) {
	dec := ical.NewDecoder(r)
	var entries []Entry
	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode holiday calendar: %w", err)
		}
		for _, event := range cal.Events() {
			start, err := event.DateTimeStart(nil)
			if err != nil {
				return nil, fmt.Errorf("holiday event without usable DTSTART: %w", err)
			}
			name, err := event.Props.Text(ical.PropSummary)
			if err != nil || name == "" {
				return nil, fmt.Errorf("%w: event on %s has no SUMMARY", ErrInvalidEntry, date.FromTime(start))
			}
			entries = append(entries, Entry{Date: date.FromTime(start), Name: name})
		}
	}
	return New(entries...)
}

// LoadFile loads a registry from a .yaml/.yml or .ics file.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(f)
	case ".ics", ".ical":
		return LoadICS(f)
	default:
		return nil, fmt.Errorf("unsupported holiday file type: %s", path)
	}
}
