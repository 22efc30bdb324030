package application

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bnema/duty-agent/internal/domain"
)

// Keys under which models have been observed to return per-area ids.
var areaMapKeys = []string{"area_ids", "areas", "area_assignments"}

const minDateLength = 8

// ValidateScheduleEntries checks the structural contract of the model's
// `schedule` array before normalization: a list of objects with parseable,
// ascending dates. Violations here are terminal; there is no repair pass
// for a model that got the schema right but the calendar wrong.
func ValidateScheduleEntries(raw any) error {
	entries, ok := raw.([]any)
	if !ok {
		return fmt.Errorf("model schedule must be a list, got %T", raw)
	}

	var previous string
	for idx, item := range entries {
		entry, ok := item.(map[string]any)
		if !ok {
			return fmt.Errorf("model schedule entry at index %d must be an object", idx)
		}

		rawDate := strings.TrimSpace(coerceString(entry["date"]))
		if rawDate == "" {
			return fmt.Errorf("model schedule entry at index %d is missing date", idx)
		}
		if _, ok := domain.ParseEntryDate(rawDate); !ok {
			return fmt.Errorf("model schedule entry at index %d has invalid date %q, expected YYYY-MM-DD", idx, rawDate)
		}
		if previous != "" && rawDate < previous {
			return fmt.Errorf("model schedule dates must be sorted in ascending order")
		}
		previous = rawDate
	}
	return nil
}

// NormalizeSchedule reduces the model's raw schedule array to ids that
// belong to the active roster. Per configured area it accepts several key
// shapes (by area name or positional index), caps at the area's daily
// quota, and drops ids already claimed by an earlier area the same day.
// Area names the model invented are kept as dynamic areas with the same
// active/dedupe filtering but no quota. Shortfalls are never auto-filled.
func NormalizeSchedule(raw any, activeIDs []int, areaNames []string, areaQuotas map[string]int, fallbackQuota int) []domain.NormalizedDay {
	entries, ok := raw.([]any)
	if !ok {
		return nil
	}

	activeSet := make(map[int]struct{}, len(activeIDs))
	for _, id := range activeIDs {
		activeSet[id] = struct{}{}
	}

	normalized := make([]domain.NormalizedDay, 0, len(entries))
	for _, item := range entries {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}

		rawDate := strings.TrimSpace(coerceString(entry["date"]))
		if len(rawDate) < minDateLength {
			continue
		}

		dayAssignments := make(map[string][]int, len(areaNames))
		usedIDs := make(map[int]struct{})

		for areaIndex, areaName := range areaNames {
			quota := fallbackQuota
			if configured, ok := areaQuotas[areaName]; ok {
				quota = configured
			}

			extracted := extractAreaIDs(entry, areaName, areaIndex, activeSet, quota)
			finalIDs := make([]int, 0, len(extracted))
			for _, id := range extracted {
				if _, used := usedIDs[id]; used {
					continue
				}
				finalIDs = append(finalIDs, id)
				usedIDs[id] = struct{}{}
			}
			dayAssignments[areaName] = finalIDs
		}

		for dynamicName, rawValue := range firstAreaMap(entry) {
			dynamicName = strings.TrimSpace(dynamicName)
			if dynamicName == "" {
				continue
			}
			if _, configured := dayAssignments[dynamicName]; configured {
				continue
			}

			extracted := extractIDs(rawValue, activeSet, math.MaxInt)
			finalIDs := make([]int, 0, len(extracted))
			for _, id := range extracted {
				if _, used := usedIDs[id]; used {
					continue
				}
				finalIDs = append(finalIDs, id)
				usedIDs[id] = struct{}{}
			}
			if len(finalIDs) > 0 {
				dayAssignments[dynamicName] = finalIDs
			}
		}

		normalized = append(normalized, domain.NormalizedDay{
			Date:    rawDate,
			AreaIDs: dayAssignments,
			Note:    strings.TrimSpace(coerceString(entry["note"])),
		})
	}

	return normalized
}

// extractAreaIDs collects ids for one configured area from any accepted key
// shape, keyed by area name or by positional index.
func extractAreaIDs(entry map[string]any, areaName string, areaIndex int, activeSet map[int]struct{}, quota int) []int {
	result := make([]int, 0, quota)

	appendIDs := func(value any) {
		if len(result) >= quota {
			return
		}
		for _, id := range extractIDs(value, activeSet, quota) {
			if containsID(result, id) {
				continue
			}
			result = append(result, id)
			if len(result) >= quota {
				return
			}
		}
	}

	for _, key := range areaMapKeys {
		areaMap, ok := entry[key].(map[string]any)
		if !ok {
			continue
		}
		appendIDs(areaMap[areaName])
		appendIDs(areaMap[strconv.Itoa(areaIndex)])
	}

	return result
}

// extractIDs filters a raw list down to deduplicated ids in the active set,
// up to limit. Any value that does not coerce to an integer is dropped.
func extractIDs(value any, activeSet map[int]struct{}, limit int) []int {
	list, ok := value.([]any)
	if !ok {
		return nil
	}

	result := make([]int, 0, len(list))
	for _, raw := range list {
		id, ok := coerceInt(raw)
		if !ok {
			continue
		}
		if _, active := activeSet[id]; !active {
			continue
		}
		if containsID(result, id) {
			continue
		}
		result = append(result, id)
		if len(result) >= limit {
			break
		}
	}
	return result
}

func firstAreaMap(entry map[string]any) map[string]any {
	for _, key := range areaMapKeys {
		if areaMap, ok := entry[key].(map[string]any); ok {
			return areaMap
		}
	}
	return nil
}

func containsID(ids []int, id int) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func coerceInt(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func coerceString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
