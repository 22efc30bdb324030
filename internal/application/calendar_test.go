package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSpanDays(t *testing.T) {
	t.Parallel()

	today := date(2026, time.February, 10)

	tests := []struct {
		name        string
		mode        string
		parameter   string
		perDay      int
		activeCount int
		want        int
	}{
		{name: "weekly", mode: "weekly", want: 7},
		{name: "monthly uses current month length", mode: "monthly", want: 28},
		{name: "custom parses parameter", mode: "custom", parameter: "10", want: 10},
		{name: "custom falls back on garbage", mode: "custom", parameter: "soon", want: 14},
		{name: "custom clamps zero to one day", mode: "custom", parameter: "0", want: 1},
		{name: "custom clamps negative to one day", mode: "custom", parameter: "-5", want: 1},
		{name: "off estimates from roster", mode: "off", perDay: 2, activeCount: 30, want: 16},
		{name: "off floors at one week", mode: "off", perDay: 2, activeCount: 6, want: 7},
		{name: "unknown mode behaves like off", mode: "fortnightly", perDay: 2, activeCount: 30, want: 16},
		{name: "off with empty roster", mode: "off", want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SpanDays(tt.mode, tt.parameter, tt.perDay, tt.activeCount, today))
		})
	}
}

func TestBuildCalendarAnchorStatesWindow(t *testing.T) {
	t.Parallel()

	anchor := BuildCalendarAnchor("weekly", "", 2, 10, date(2026, time.March, 2), false)

	assert.Contains(t, anchor, "Schedule Start Date: 2026-03-02 (星期一)")
	assert.Contains(t, anchor, "Schedule End Date:   2026-03-08 (星期日)")
	assert.Contains(t, anchor, "Total Days: 7")
	assert.Contains(t, anchor, "HARD CONSTRAINT")
	assert.NotContains(t, anchor, "Cross-Month Boundary")
}

func TestBuildCalendarAnchorEnumeratesMonthBoundaries(t *testing.T) {
	t.Parallel()

	// 2026-02-25 + 40 days spans the Feb->Mar and Mar->Apr boundaries.
	anchor := BuildCalendarAnchor("custom", "40", 2, 10, date(2026, time.February, 25), false)

	assert.Contains(t, anchor, "Cross-Month Boundary: 2026-02-28 (星期六) -> 2026-03-01 (星期日)")
	assert.Contains(t, anchor, "Cross-Month Boundary: 2026-03-31 (星期二) -> 2026-04-01 (星期三)")
}

func TestBuildCalendarAnchorYearBoundary(t *testing.T) {
	t.Parallel()

	anchor := BuildCalendarAnchor("custom", "5", 2, 10, date(2026, time.December, 30), false)

	assert.Contains(t, anchor, "Cross-Month Boundary: 2026-12-31")
	assert.Contains(t, anchor, "-> 2027-01-01")
}

func TestBuildCalendarAnchorWeekendNote(t *testing.T) {
	t.Parallel()

	anchor := BuildCalendarAnchor("weekly", "", 2, 10, date(2026, time.March, 2), true)
	assert.Contains(t, anchor, "skip Saturday and Sunday")
}

func TestTargetDatesSkipsWeekends(t *testing.T) {
	t.Parallel()

	// 2026-02-09 is a Monday.
	dates := TargetDates(date(2026, time.February, 9), 5, true)
	assert.Len(t, dates, 5)
	for _, d := range dates {
		assert.NotEqual(t, time.Saturday, d.Weekday())
		assert.NotEqual(t, time.Sunday, d.Weekday())
	}
	assert.Equal(t, "2026-02-13", dates[4].Format("2006-01-02"))
}

func TestTargetDatesKeepsWeekendsWhenNotSkipping(t *testing.T) {
	t.Parallel()

	dates := TargetDates(date(2026, time.February, 9), 7, false)
	assert.Len(t, dates, 7)

	weekdays := map[time.Weekday]bool{}
	for _, d := range dates {
		weekdays[d.Weekday()] = true
	}
	assert.True(t, weekdays[time.Saturday])
	assert.True(t, weekdays[time.Sunday])
}
