package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes a Date,Course,Topics table, one row per date.
func WriteCSV(w io.Writer, doc Document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Course", "Topics"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, d := range doc.Dates {
		if err := cw.Write([]string{d.String(), doc.CourseName, doc.topicsOf(d, noTopics)}); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", d, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
