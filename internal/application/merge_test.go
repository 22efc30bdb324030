package application

import (
	"testing"

	"github.com/bnema/duty-agent/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(date string, note string) domain.DayEntry {
	return domain.DayEntry{Date: date, Note: note}
}

func poolDates(pool []domain.DayEntry) []string {
	dates := make([]string, 0, len(pool))
	for _, e := range pool {
		dates = append(dates, e.Date)
	}
	return dates
}

func TestMergePoolAppendKeepsBothAndNewWinsCollisions(t *testing.T) {
	t.Parallel()

	pool := []domain.DayEntry{entry("2026-02-10", "old"), entry("2026-02-11", "old")}
	restored := []domain.DayEntry{entry("2026-02-11", "new"), entry("2026-02-12", "new")}

	merged := MergePool(pool, restored, domain.ApplyModeAppend, "2026-02-11")
	require.Equal(t, []string{"2026-02-10", "2026-02-11", "2026-02-12"}, poolDates(merged))
	assert.Equal(t, "new", merged[1].Note)
}

func TestMergePoolReplaceAllDiscardsOldPool(t *testing.T) {
	t.Parallel()

	pool := []domain.DayEntry{entry("2026-02-10", "old"), entry("2026-02-11", "old")}
	restored := []domain.DayEntry{entry("2026-02-12", "new")}

	merged := MergePool(pool, restored, domain.ApplyModeReplaceAll, "2026-02-12")
	assert.Equal(t, []string{"2026-02-12"}, poolDates(merged))
}

func TestMergePoolReplaceFutureSplitsOnStartDate(t *testing.T) {
	t.Parallel()

	pool := []domain.DayEntry{
		entry("2026-02-10", "old"), entry("2026-02-11", "old"),
		entry("2026-02-12", "old"), entry("2026-02-13", "old"),
	}
	restored := []domain.DayEntry{entry("2026-02-12", "new"), entry("2026-02-13", "new")}

	merged := MergePool(pool, restored, domain.ApplyModeReplaceFuture, "2026-02-12")
	require.Equal(t, []string{"2026-02-10", "2026-02-11", "2026-02-12", "2026-02-13"}, poolDates(merged))

	for _, e := range merged {
		if e.Date < "2026-02-12" {
			assert.Equal(t, "old", e.Note, e.Date)
		} else {
			assert.Equal(t, "new", e.Note, e.Date)
		}
	}
}

func TestMergePoolReplaceFutureReplacesStartDateItself(t *testing.T) {
	t.Parallel()

	pool := []domain.DayEntry{entry("2026-02-12", "old")}
	restored := []domain.DayEntry{entry("2026-02-12", "new")}

	merged := MergePool(pool, restored, domain.ApplyModeReplaceFuture, "2026-02-12")
	require.Len(t, merged, 1)
	assert.Equal(t, "new", merged[0].Note)
}

func TestMergePoolReplaceOverlapKeepsOutsideSpan(t *testing.T) {
	t.Parallel()

	pool := []domain.DayEntry{
		entry("2026-02-09", "old"), entry("2026-02-10", "old"),
		entry("2026-02-11", "old"), entry("2026-02-14", "old"),
	}
	restored := []domain.DayEntry{entry("2026-02-10", "new"), entry("2026-02-11", "new")}

	merged := MergePool(pool, restored, domain.ApplyModeReplaceOverlap, "2026-02-10")
	require.Equal(t, []string{"2026-02-09", "2026-02-10", "2026-02-11", "2026-02-14"}, poolDates(merged))
	assert.Equal(t, "old", merged[0].Note)
	assert.Equal(t, "new", merged[1].Note)
	assert.Equal(t, "new", merged[2].Note)
	assert.Equal(t, "old", merged[3].Note)
}

func TestMergePoolReplaceOverlapWithNoNewEntriesReturnsPoolUnchanged(t *testing.T) {
	t.Parallel()

	pool := []domain.DayEntry{entry("2026-02-11", "old"), entry("2026-02-09", "old")}

	merged := MergePool(pool, nil, domain.ApplyModeReplaceOverlap, "2026-02-10")
	assert.Equal(t, []string{"2026-02-09", "2026-02-11"}, poolDates(merged))
}

func TestMergePoolAlwaysSortedAndUnique(t *testing.T) {
	t.Parallel()

	pool := []domain.DayEntry{
		entry("2026-02-13", "old"), entry("2026-02-10", "old"), entry("2026-02-10", "dup"),
	}
	restored := []domain.DayEntry{entry("2026-02-12", "new"), entry("2026-02-10", "new")}

	for _, mode := range []domain.ApplyMode{
		domain.ApplyModeAppend, domain.ApplyModeReplaceAll,
		domain.ApplyModeReplaceFuture, domain.ApplyModeReplaceOverlap,
	} {
		merged := MergePool(pool, restored, mode, "2026-02-10")
		dates := poolDates(merged)
		seen := map[string]bool{}
		for i, date := range dates {
			assert.False(t, seen[date], "duplicate date %s in mode %s", date, mode)
			seen[date] = true
			if i > 0 {
				assert.Less(t, dates[i-1], date, "unsorted in mode %s", mode)
			}
		}
	}
}

func TestMergePoolDropsEntriesWithEmptyDates(t *testing.T) {
	t.Parallel()

	merged := MergePool([]domain.DayEntry{entry("", "junk")}, []domain.DayEntry{entry("2026-02-10", "new")}, domain.ApplyModeAppend, "2026-02-10")
	assert.Equal(t, []string{"2026-02-10"}, poolDates(merged))
}
