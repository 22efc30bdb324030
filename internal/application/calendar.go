package application

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cadence modes accepted from settings and run-request overrides.
const (
	CadenceOff     = "off"
	CadenceWeekly  = "weekly"
	CadenceMonthly = "monthly"
	CadenceCustom  = "custom"
)

const defaultCustomSpanDays = 14

var weekdayCN = [...]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}

func weekdayLabel(t time.Time) string {
	return weekdayCN[int(t.Weekday())]
}

// SpanDays computes how many days one scheduling window covers for a
// cadence mode. Unknown or off modes are estimated from roster pressure so
// a full rotation fits the window.
func SpanDays(mode, parameter string, perDay, activeCount int, today time.Time) int {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case CadenceWeekly:
		return 7
	case CadenceMonthly:
		return daysInMonth(today)
	case CadenceCustom:
		parsed, err := strconv.Atoi(strings.TrimSpace(parameter))
		if err != nil {
			return defaultCustomSpanDays
		}
		if parsed < 1 {
			return 1
		}
		return parsed
	default:
		if perDay > 0 && activeCount > 0 {
			if span := activeCount/perDay + 1; span > 7 {
				return span
			}
		}
		return 7
	}
}

// BuildCalendarAnchor renders the grounding block injected into the prompt:
// the explicit date window the model must stay inside, every month boundary
// that window crosses, and the hard range constraint.
func BuildCalendarAnchor(mode, parameter string, perDay, activeCount int, today time.Time, skipWeekends bool) string {
	spanDays := SpanDays(mode, parameter, perDay, activeCount, today)
	start := today
	end := today.AddDate(0, 0, spanDays-1)

	lines := []string{
		fmt.Sprintf("Schedule Start Date: %s (%s)", start.Format("2006-01-02"), weekdayLabel(start)),
		fmt.Sprintf("Schedule End Date:   %s (%s)", end.Format("2006-01-02"), weekdayLabel(end)),
		fmt.Sprintf("Total Days: %d", spanDays),
	}

	if start.Month() != end.Month() || start.Year() != end.Year() {
		cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
		for !cursor.After(end) {
			lastOfMonth := cursor.AddDate(0, 1, -1)
			if !lastOfMonth.Before(start) && !lastOfMonth.After(end) {
				firstOfNext := lastOfMonth.AddDate(0, 0, 1)
				lines = append(lines, fmt.Sprintf(
					"Cross-Month Boundary: %s (%s) -> %s (%s)",
					lastOfMonth.Format("2006-01-02"), weekdayLabel(lastOfMonth),
					firstOfNext.Format("2006-01-02"), weekdayLabel(firstOfNext),
				))
			}
			cursor = cursor.AddDate(0, 1, 0)
		}
	}

	if skipWeekends {
		lines = append(lines, "Working days only: skip Saturday and Sunday; do not assign duty on weekend dates.")
	}

	lines = append(lines,
		"HARD CONSTRAINT: You MUST NOT generate any date outside this range. "+
			"Use the boundaries above to verify every date you produce.")
	return strings.Join(lines, "\n")
}

// TargetDates enumerates count candidate duty dates from start, optionally
// skipping weekends.
func TargetDates(start time.Time, count int, skipWeekends bool) []time.Time {
	dates := make([]time.Time, 0, count)
	cursor := start
	for len(dates) < count {
		if skipWeekends && (cursor.Weekday() == time.Saturday || cursor.Weekday() == time.Sunday) {
			cursor = cursor.AddDate(0, 0, 1)
			continue
		}
		dates = append(dates, cursor)
		cursor = cursor.AddDate(0, 0, 1)
	}
	return dates
}

func daysInMonth(t time.Time) int {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return firstOfMonth.AddDate(0, 1, -1).Day()
}
