package application

import (
	"strings"

	"github.com/bnema/duty-agent/internal/domain"
)

var dayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// RestoreSchedule converts normalized id-keyed days back into the persisted,
// name-keyed form. Ids unknown to the roster are dropped; days with
// unparseable dates are skipped; an empty model note falls back to the
// host-supplied note for that date.
func RestoreSchedule(days []domain.NormalizedDay, roster *domain.Roster, areaNames []string, existingNotes map[string]string) []domain.DayEntry {
	restored := make([]domain.DayEntry, 0, len(days))

	for _, day := range days {
		parsed, ok := domain.ParseEntryDate(day.Date)
		if !ok {
			continue
		}

		assignments := make(map[string][]string, len(day.AreaIDs))
		for _, areaName := range areaNames {
			assignments[areaName] = namesForIDs(day.AreaIDs[areaName], roster)
		}
		for dynamicName, ids := range day.AreaIDs {
			dynamicName = strings.TrimSpace(dynamicName)
			if dynamicName == "" {
				continue
			}
			if _, configured := assignments[dynamicName]; configured {
				continue
			}
			if names := namesForIDs(ids, roster); len(names) > 0 {
				assignments[dynamicName] = names
			}
		}

		note := strings.TrimSpace(day.Note)
		if note == "" {
			note = existingNotes[day.Date]
		}

		restored = append(restored, domain.DayEntry{
			Date:            day.Date,
			Day:             dayNames[int(parsed.Weekday())],
			AreaAssignments: assignments,
			Note:            note,
		})
	}

	return restored
}

func namesForIDs(ids []int, roster *domain.Roster) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := roster.IDToName[id]; ok {
			names = append(names, name)
		}
	}
	return names
}
