package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const printStyle = `body { font-family: Arial, sans-serif; }
table { width: 100%; border-collapse: collapse; margin-top: 20px; }
th, td { border: 1px solid black; padding: 8px; text-align: left; }
th { background-color: #f2f2f2; }
.course-info { margin-bottom: 20px; }
.course-info div { margin-bottom: 5px; }
.course-notes { margin-bottom: 20px; }`

// WriteHTML writes a printable XHTML page. The week cell of the schedule
// table spans all dates of its week; course notes are rendered from
// markdown above the table.
func WriteHTML(w io.Writer, doc Document) error {
	page := PrintDocument(doc)
	page.Indent(2)
	if _, err := page.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write print document: %w", err)
	}
	return nil
}

// PrintDocument builds the XHTML tree rendered by WriteHTML.
func PrintDocument(doc Document) *etree.Document {
	page := etree.NewDocument()
	page.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	page.CreateDirective("DOCTYPE html")

	html := page.CreateElement("html")
	html.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")

	head := html.CreateElement("head")
	head.CreateElement("meta").CreateAttr("charset", "utf-8")
	head.CreateElement("title").SetText(scheduleTitle(doc))
	head.CreateElement("style").SetText(printStyle)

	body := html.CreateElement("body")
	body.CreateElement("h2").SetText("Course Schedule Summary")

	sum := doc.Summary
	info := body.CreateElement("div")
	info.CreateAttr("class", "course-info")
	for _, line := range [][2]string{
		{"Course Name", orNA(doc.CourseName)},
		{"Course Code", orNA(doc.CourseCode)},
		{"Duration", fmt.Sprintf("%d weeks", sum.TotalWeeks)},
		{"Teaching Days", strconv.Itoa(sum.TeachingDays)},
		{"Selected Days", strings.Join(sum.SelectedDays, ", ")},
		{"Excluded Dates", strconv.Itoa(sum.ExcludedCount)},
	} {
		div := info.CreateElement("div")
		div.CreateElement("strong").SetText(line[0] + ":")
		div.CreateText(" " + line[1])
	}
	if strings.TrimSpace(doc.Description) != "" {
		body.AddChild(notesElement(doc.Description))
	}

	table := body.CreateElement("table")
	headRow := table.CreateElement("thead").CreateElement("tr")
	for _, h := range []string{"Week", "Date", "Topic"} {
		headRow.CreateElement("th").SetText(h)
	}

	tbody := table.CreateElement("tbody")
	for idx, dates := range doc.Weeks.All() {
		for i, d := range dates {
			tr := tbody.CreateElement("tr")
			if i == 0 {
				wk := tr.CreateElement("td")
				wk.CreateAttr("rowspan", strconv.Itoa(len(dates)))
				wk.SetText(strconv.Itoa(idx))
			}
			tr.CreateElement("td").SetText(d.String())
			tr.CreateElement("td").SetText(doc.topicsOf(d, ""))
		}
	}
	return page
}
