package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

const productID = "-//termplan//Course Schedule//EN"

var uidNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("termplan.cyp0633.github.io"))

// ICSOptions controls the iCalendar writer.
type ICSOptions struct {
	// Duration of each teaching event
	Duration time.Duration
	// Now stamps DTSTAMP
	Now func() time.Time
}

// DefaultICSOptions gives one-hour events stamped with the current time.
func DefaultICSOptions() ICSOptions {
	return ICSOptions{Duration: time.Hour, Now: time.Now}
}

// WriteICS writes one all-day-anchored VEVENT per date of doc.
func WriteICS(w io.Writer, doc Document, opts ICSOptions) error {
	if opts.Duration <= 0 {
		opts.Duration = time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	stamp := opts.Now().UTC()

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, d := range doc.Dates {
		topics := doc.topicsOf(d, noTopics)

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, EventUID(doc.CourseName, d.String()))
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		event.Props.SetDate(ical.PropDateTimeStart, d.Time())

		duration := ical.NewProp(ical.PropDuration)
		duration.Value = formatDuration(opts.Duration)
		event.Props.Set(duration)

		event.Props.SetText(ical.PropSummary, fmt.Sprintf("%s - %s", doc.CourseName, topics))
		event.Props.SetText(ical.PropDescription, fmt.Sprintf("Course: %s\nTopics: %s", doc.CourseName, topics))

		cal.Children = append(cal.Children, event.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

// EventUID is stable for a course and day, so re-exports update rather than
// duplicate imported events.
func EventUID(course, day string) string {
	return uuid.NewSHA1(uidNamespace, []byte(course+"|"+day)).String()
}

// formatDuration renders d as an RFC 5545 duration such as PT1H30M.
func formatDuration(d time.Duration) string {
	var b strings.Builder
	b.WriteString("PT")
	if h := int(d / time.Hour); h > 0 {
		fmt.Fprintf(&b, "%dH", h)
		d -= time.Duration(h) * time.Hour
	}
	if m := int(d / time.Minute); m > 0 {
		fmt.Fprintf(&b, "%dM", m)
		d -= time.Duration(m) * time.Minute
	}
	if s := int(d / time.Second); s > 0 || b.Len() == 2 {
		fmt.Fprintf(&b, "%dS", s)
	}
	return b.String()
}
