package domain

import (
	"sort"
	"time"
)

// DateLayout is the calendar-date format used everywhere a date crosses a
// process boundary: the state document, the model contract, and the
// run-request notes map.
const DateLayout = "2006-01-02"

// DayEntry is one persisted schedule day in its name-restored form.
// AreaAssignments maps area name to display names in assignment order.
type DayEntry struct {
	Date            string              `json:"date"`
	Day             string              `json:"day,omitempty"`
	AreaAssignments map[string][]string `json:"area_assignments"`
	Note            string              `json:"note,omitempty"`
}

// NormalizedDay is the intermediate, id-keyed form of a schedule day after
// model output has been filtered against the active roster.
type NormalizedDay struct {
	Date    string
	AreaIDs map[string][]int
	Note    string
}

// ScheduledIDs returns the union of ids placed into any area across days.
func ScheduledIDs(days []NormalizedDay) map[int]struct{} {
	scheduled := make(map[int]struct{})
	for _, day := range days {
		for _, ids := range day.AreaIDs {
			for _, id := range ids {
				scheduled[id] = struct{}{}
			}
		}
	}
	return scheduled
}

// FairnessState carries the debt/credit queues and the model's memory note
// between runs.
type FairnessState struct {
	DebtIDs    []int
	CreditIDs  []int
	MemoryNote string
}

// State is the persisted document: the rotation pool plus fairness state.
type State struct {
	Pool     []DayEntry
	Fairness FairnessState
}

// SortPoolByDate orders entries ascending by date string. ISO dates sort
// lexicographically, matching the calendar order invariant.
func SortPoolByDate(pool []DayEntry) {
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Date < pool[j].Date
	})
}

// ParseEntryDate parses an entry date, reporting ok=false on malformed input.
func ParseEntryDate(raw string) (time.Time, bool) {
	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
