package application

import (
	"strings"

	"github.com/bnema/duty-agent/internal/domain"
)

// MergePool combines newly restored day entries into the persisted pool
// according to the run's apply mode. Whatever the mode, the result is
// re-keyed by date ascending with the last writer for a date winning, so
// the one-entry-per-date invariant holds unconditionally.
func MergePool(pool, restored []domain.DayEntry, mode domain.ApplyMode, startDate string) []domain.DayEntry {
	switch mode {
	case domain.ApplyModeReplaceAll:
		return dedupePoolByDate(restored)

	case domain.ApplyModeReplaceFuture:
		kept := make([]domain.DayEntry, 0, len(pool))
		for _, entry := range pool {
			if entry.Date < startDate {
				kept = append(kept, entry)
			}
		}
		return dedupePoolByDate(append(kept, restored...))

	case domain.ApplyModeReplaceOverlap:
		if len(restored) == 0 {
			return dedupePoolByDate(pool)
		}
		endDate := restored[len(restored)-1].Date
		kept := make([]domain.DayEntry, 0, len(pool))
		for _, entry := range pool {
			if entry.Date < startDate || entry.Date > endDate {
				kept = append(kept, entry)
			}
		}
		return dedupePoolByDate(append(kept, restored...))

	default: // append and anything unrecognized
		return dedupePoolByDate(append(append([]domain.DayEntry{}, pool...), restored...))
	}
}

func dedupePoolByDate(entries []domain.DayEntry) []domain.DayEntry {
	byDate := make(map[string]domain.DayEntry, len(entries))
	order := make([]string, 0, len(entries))
	for _, entry := range entries {
		key := strings.TrimSpace(entry.Date)
		if key == "" {
			continue
		}
		if _, seen := byDate[key]; !seen {
			order = append(order, key)
		}
		byDate[key] = entry
	}

	result := make([]domain.DayEntry, 0, len(order))
	for _, key := range order {
		result = append(result, byDate[key])
	}
	domain.SortPoolByDate(result)
	return result
}
