package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRosterDerivesActiveAndAllIDs(t *testing.T) {
	t.Parallel()

	roster, err := NewRoster([]Person{
		{ID: 3, DisplayName: "李四", Active: true},
		{ID: 1, DisplayName: "张三", Active: true},
		{ID: 2, DisplayName: "王五", Active: false},
	})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 3}, roster.ActiveIDs())
	assert.Equal(t, []int{1, 2, 3}, roster.AllIDs())
	assert.Equal(t, []int{2}, roster.DisabledIDs())

	lo, hi := roster.IDRange()
	assert.Equal(t, 1, lo)
	assert.Equal(t, 3, hi)
}

func TestNewRosterUniquifiesDuplicateNames(t *testing.T) {
	t.Parallel()

	roster, err := NewRoster([]Person{
		{ID: 1, DisplayName: "王伟", Active: true},
		{ID: 2, DisplayName: "王伟", Active: true},
		{ID: 3, DisplayName: "王伟", Active: true},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, roster.NameToID["王伟"])
	assert.Equal(t, 2, roster.NameToID["王伟2"])
	assert.Equal(t, 3, roster.NameToID["王伟3"])
	assert.Equal(t, "王伟2", roster.IDToName[2])
}

func TestNewRosterSkipsInvalidRows(t *testing.T) {
	t.Parallel()

	roster, err := NewRoster([]Person{
		{ID: 0, DisplayName: "ignored", Active: true},
		{ID: -4, DisplayName: "ignored", Active: true},
		{ID: 7, DisplayName: "  ", Active: true},
		{ID: 5, DisplayName: "ok", Active: true},
	})
	require.NoError(t, err)

	assert.Equal(t, []int{5}, roster.AllIDs())
}

func TestNewRosterRequiresActivePerson(t *testing.T) {
	t.Parallel()

	_, err := NewRoster([]Person{{ID: 1, DisplayName: "idle", Active: false}})
	require.ErrorIs(t, err, ErrNoActivePeople)
}

func TestApplyModeValid(t *testing.T) {
	t.Parallel()

	for _, mode := range []ApplyMode{ApplyModeAppend, ApplyModeReplaceAll, ApplyModeReplaceFuture, ApplyModeReplaceOverlap} {
		assert.True(t, mode.Valid(), string(mode))
	}
	assert.False(t, ApplyMode("merge").Valid())
	assert.False(t, ApplyMode("").Valid())
}

func TestScheduledIDsCollectsUnionAcrossDaysAndAreas(t *testing.T) {
	t.Parallel()

	days := []NormalizedDay{
		{Date: "2026-03-02", AreaIDs: map[string][]int{"教室": {1, 2}, "清洁区": {3}}},
		{Date: "2026-03-03", AreaIDs: map[string][]int{"教室": {2, 4}}},
	}

	scheduled := ScheduledIDs(days)
	assert.Len(t, scheduled, 4)
	for _, id := range []int{1, 2, 3, 4} {
		assert.Contains(t, scheduled, id)
	}
}
