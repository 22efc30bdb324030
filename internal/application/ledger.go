package application

import (
	"sort"

	"github.com/bnema/duty-agent/internal/domain"
)

// The ledger treats the model's self-reported queues as advisory and
// derives the authoritative result from what was actually written to the
// pool. An id the model forgot to schedule never silently leaves debt, and
// a scheduled id never lingers in it.

// ReconcileDebts returns the debt queue after a run: the model-reported
// remainder, plus every original debt that was not actually scheduled,
// minus everything that was.
func ReconcileDebts(original, reported []int, days []domain.NormalizedDay) []int {
	scheduled := domain.ScheduledIDs(days)

	final := make(map[int]struct{}, len(reported)+len(original))
	for _, id := range reported {
		final[id] = struct{}{}
	}
	for _, id := range original {
		if _, ok := scheduled[id]; !ok {
			final[id] = struct{}{}
		}
	}
	for id := range scheduled {
		delete(final, id)
	}

	return sortedIDs(final)
}

// ReconcileCredits returns the credit queue after a run. A credit holder
// who was scheduled consumed their free skip; one the pointer never
// reached keeps it, whatever the model claims.
func ReconcileCredits(original, reported []int, days []domain.NormalizedDay) []int {
	scheduled := domain.ScheduledIDs(days)

	remaining := make(map[int]struct{}, len(reported)+len(original))
	for _, id := range reported {
		remaining[id] = struct{}{}
	}
	for _, id := range original {
		remaining[id] = struct{}{}
	}
	for id := range scheduled {
		delete(remaining, id)
	}

	return sortedIDs(remaining)
}

// FilterKnownIDs keeps only ids present in the allowed set, deduplicated,
// preserving first-seen order. Used to scrub persisted queues against the
// current active roster before a run.
func FilterKnownIDs(ids []int, allowed map[int]struct{}) []int {
	result := make([]int, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := allowed[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func sortedIDs(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
