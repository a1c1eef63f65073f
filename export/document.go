// Package export renders a planned schedule as iCalendar, CSV, XLSX or a
// printable XHTML page.
package export

import (
	"github.com/cyp0633/termplan/planner/date"
	"github.com/cyp0633/termplan/planner/session"
	"github.com/cyp0633/termplan/planner/topics"
	"github.com/cyp0633/termplan/planner/week"
)

const (
	topicSeparator = ", "
	noTopics       = "No topics"
)

// Document is the read-only view every writer renders.
type Document struct {
	CourseName string
	CourseCode string
	// Description is the free-form course notes, in markdown.
	Description string
	Dates       []date.Date
	Notes       *topics.Notes
	Weeks       week.Groups
	Summary     session.Summary
}

// FromSession snapshots s. Dates are the generated schedule plus custom
// dates; topics on any other date are left out.
func FromSession(s *session.Session) Document {
	c := s.Course()
	dates := s.Combined()
	return Document{
		CourseName:  c.Name,
		CourseCode:  c.Code,
		Description: c.Notes,
		Dates:       dates,
		Notes:       s.Notes(),
		Weeks:       week.Group(dates, c.Start()),
		Summary:     s.Summary(),
	}
}

// topicsOf joins the labels of d, or returns fallback.
func (doc Document) topicsOf(d date.Date, fallback string) string {
	if doc.Notes == nil {
		return fallback
	}
	return doc.Notes.Joined(d, topicSeparator, fallback)
}
