package view

import (
	"strings"
	"time"

	"github.com/contentops/taskflow/internal/domain/task"
)

// Window selects the time range a dashboard shows.
type Window string

const (
	WindowDay   Window = "day"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
)

// MonthLayout is the textual year-month a month window matches against.
const MonthLayout = "2006-01"

// inWindow reports whether a reference date (YYYY-MM-DD, possibly empty)
// falls inside the window. A task with no reference date never matches.
//
// day compares against the current calendar day and week against the
// current Sunday-to-Saturday range, both from the wall clock; month is a
// textual YYYY-MM prefix match against the selected month, so it needs
// no clock at all.
func inWindow(refDate string, w Window, month string, now time.Time) bool {
	if refDate == "" {
		return false
	}

	switch w {
	case WindowMonth:
		if month == "" {
			month = now.Format(MonthLayout)
		}
		return strings.HasPrefix(refDate, month)
	case WindowDay:
		d, err := time.Parse(task.DateLayout, refDate)
		if err != nil {
			return false
		}
		y1, m1, d1 := d.Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case WindowWeek:
		d, err := time.Parse(task.DateLayout, refDate)
		if err != nil {
			return false
		}
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
			AddDate(0, 0, -int(now.Weekday()))
		end := start.AddDate(0, 0, 7)
		d = time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, now.Location())
		return !d.Before(start) && d.Before(end)
	}
	return false
}
