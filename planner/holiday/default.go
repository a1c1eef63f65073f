package holiday

import (
	"time"

	"github.com/cyp0633/termplan/planner/date"
)

// National holidays for 2025.
var defaultHolidays = []struct {
	month time.Month
	day   int
	name  string
}{
	{time.January, 26, "Republic Day"},
	{time.March, 21, "Holi"},
	{time.April, 14, "Dr. Ambedkar Jayanti"},
	{time.April, 18, "Good Friday"},
	{time.May, 1, "Labour Day"},
	{time.August, 15, "Independence Day"},
	{time.August, 19, "Raksha Bandhan"},
	{time.September, 5, "Teachers' Day"},
	{time.October, 2, "Gandhi Jayanti"},
	{time.October, 22, "Dussehra"},
	{time.November, 1, "Diwali"},
	{time.November, 2, "Diwali Holiday"},
	{time.November, 14, "Children's Day"},
	{time.December, 25, "Christmas Day"},
}

// Default returns a new registry holding the built-in 2025 holiday table.
func Default() *Registry {
	entries := make([]Entry, len(defaultHolidays))
	for i, h := range defaultHolidays {
		entries[i] = Entry{Date: date.New(2025, h.month, h.day), Name: h.name}
	}
	r, err := New(entries...)
	if err != nil {
		// the table is static, this only fires on a bad edit
		panic(err)
	}
	return r
}
