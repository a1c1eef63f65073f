package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	scheduleSheet = "Schedule"
	summarySheet  = "Summary"
)

// WriteXLSX writes a workbook with a week-grouped schedule sheet and a
// summary sheet. The week cell is merged across the rows of its dates.
func WriteXLSX(w io.Writer, doc Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", scheduleSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeScheduleSheet(f, doc); err != nil {
		return err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, doc); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeScheduleSheet(f *excelize.File, doc Document) error {
	sheet := scheduleSheet
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 14)
	f.SetColWidth(sheet, "C", "C", 48)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#F2F2F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	weekStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create week style: %w", err)
	}

	// title row
	f.SetCellValue(sheet, "A1", scheduleTitle(doc))
	if err := f.MergeCell(sheet, "A1", "C1"); err != nil {
		return fmt.Errorf("failed to merge title: %w", err)
	}
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)

	row := 2
	f.SetCellValue(sheet, cell("A", row), "Week")
	f.SetCellValue(sheet, cell("B", row), "Date")
	f.SetCellValue(sheet, cell("C", row), "Topics")
	f.SetCellStyle(sheet, cell("A", row), cell("C", row), headerStyle)

	row = 3
	for idx, dates := range doc.Weeks.All() {
		first := row
		for _, d := range dates {
			f.SetCellValue(sheet, cell("B", row), d.String())
			f.SetCellValue(sheet, cell("C", row), doc.topicsOf(d, ""))
			row++
		}
		f.SetCellValue(sheet, cell("A", first), idx)
		if last := row - 1; last > first {
			if err := f.MergeCell(sheet, cell("A", first), cell("A", last)); err != nil {
				return fmt.Errorf("failed to merge week %d: %w", idx, err)
			}
		}
		f.SetCellStyle(sheet, cell("A", first), cell("A", row-1), weekStyle)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, doc Document) error {
	sum := doc.Summary
	rows := [][2]any{
		{"Course Name", orNA(doc.CourseName)},
		{"Course Code", orNA(doc.CourseCode)},
		{"Duration (weeks)", sum.TotalWeeks},
		{"Teaching Days", sum.TeachingDays},
		{"Selected Days", strings.Join(sum.SelectedDays, ", ")},
		{"Excluded Dates", sum.ExcludedCount},
	}
	f.SetColWidth(summarySheet, "A", "A", 18)
	f.SetColWidth(summarySheet, "B", "B", 32)
	for i, r := range rows {
		if err := f.SetCellValue(summarySheet, cell("A", i+1), r[0]); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
		f.SetCellValue(summarySheet, cell("B", i+1), r[1])
	}
	return nil
}

func scheduleTitle(doc Document) string {
	if doc.CourseCode == "" {
		return doc.CourseName + " Schedule"
	}
	return fmt.Sprintf("%s (%s) Schedule", doc.CourseName, doc.CourseCode)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
