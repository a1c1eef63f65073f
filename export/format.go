package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Format names an export encoding.
type Format string

const (
	FormatICS  Format = "ics"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatHTML Format = "html"
)

// ErrUnknownFormat is returned for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown export format")

// Formats lists every supported format.
var Formats = []Format{FormatICS, FormatCSV, FormatXLSX, FormatHTML}

// ParseFormat accepts a format name with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	switch f {
	case FormatICS, FormatCSV, FormatXLSX, FormatHTML:
		return f, nil
	case "ical", "icalendar":
		return FormatICS, nil
	case "htm", "xhtml":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatICS:
		return "text/calendar; charset=utf-8"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatHTML:
		return "application/xhtml+xml; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// Extension is the file extension for f, including the dot.
func (f Format) Extension() string { return "." + string(f) }

// Filename is the download name for a course, "<course>_schedule.<ext>".
func (f Format) Filename(course string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, course)
	if name == "" {
		name = "course"
	}
	return name + "_schedule" + f.Extension()
}

// Write renders doc in format f. ICS output uses DefaultICSOptions.
func Write(f Format, w io.Writer, doc Document) error {
	switch f {
	case FormatICS:
		return WriteICS(w, doc, DefaultICSOptions())
	case FormatCSV:
		return WriteCSV(w, doc)
	case FormatXLSX:
		return WriteXLSX(w, doc)
	case FormatHTML:
		return WriteHTML(w, doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}
