package application

import (
	"testing"

	"github.com/bnema/duty-agent/internal/domain"
	"github.com/bnema/duty-agent/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPromptMessagesShape(t *testing.T) {
	t.Parallel()

	messages := BuildPromptMessages(PromptInput{
		IDRangeLow:  1,
		IDRangeHigh: 40,
		DisabledIDs: []int{7, 9},
		AnchorID:    12,
		CurrentTime: "2026-03-02 08:00",
		Instruction: "排本周的班",
		AreaNames:   []string{"教室", "清洁区"},
		DebtIDs:     []int{4},
		CreditIDs:   []int{5},
		MemoryNote:  "Pointer at 12.",
		Calendar:    "Schedule Start Date: 2026-03-02 (星期一)",
	})
	require.Len(t, messages, 2)

	system := messages[0]
	assert.Equal(t, ports.RoleSystem, system.Role)
	assert.Contains(t, system.Content, "Three-Queue")
	assert.Contains(t, system.Content, `"教室": [101, 102]`)
	assert.Contains(t, system.Content, `"清洁区": [101, 102]`)
	assert.Contains(t, system.Content, "new_debt_ids")
	assert.Contains(t, system.Content, "new_credit_ids")
	assert.Contains(t, system.Content, "thinking_trace")
	assert.NotContains(t, system.Content, "User Defined Rules")

	user := messages[1]
	assert.Equal(t, ports.RoleUser, user.Role)
	assert.Contains(t, user.Content, "ID Range: 1-40")
	assert.Contains(t, user.Content, "Disabled IDs: [7, 9]")
	assert.Contains(t, user.Content, "Last ID: 12")
	assert.Contains(t, user.Content, "PREVIOUS RUN MEMORY (IMPORTANT): Pointer at 12.")
	assert.Contains(t, user.Content, "CURRENT DEBT LIST (PRIORITY HIGH): [4]")
	assert.Contains(t, user.Content, "CURRENT CREDIT LIST (IMMUNITY): [5]")
	assert.Contains(t, user.Content, "Calendar Anchor (DO NOT VIOLATE)")
	assert.Contains(t, user.Content, `Instruction: "排本周的班"`)
}

func TestBuildPromptMessagesAppendsAnonymizedRule(t *testing.T) {
	t.Parallel()

	messages := BuildPromptMessages(PromptInput{
		AreaNames:   []string{"A"},
		Instruction: "plan",
		DutyRule:    "12 never on Friday",
	})

	assert.Contains(t, messages[0].Content, "--- User Defined Rules ---\n12 never on Friday")
}

func TestBuildPromptMessagesOmitsEmptySections(t *testing.T) {
	t.Parallel()

	messages := BuildPromptMessages(PromptInput{AreaNames: []string{"A"}, Instruction: "plan"})

	user := messages[1].Content
	assert.NotContains(t, user, "PREVIOUS RUN MEMORY")
	assert.NotContains(t, user, "CURRENT DEBT LIST")
	assert.NotContains(t, user, "CURRENT CREDIT LIST")
	assert.NotContains(t, user, "Calendar Anchor")
}

func testRoster(t *testing.T, people ...domain.Person) *domain.Roster {
	t.Helper()
	roster, err := domain.NewRoster(people)
	require.NoError(t, err)
	return roster
}

func TestAnchorIDScansPoolBackward(t *testing.T) {
	t.Parallel()

	roster := testRoster(t,
		domain.Person{ID: 1, DisplayName: "张三", Active: true},
		domain.Person{ID: 2, DisplayName: "李四", Active: true},
		domain.Person{ID: 3, DisplayName: "王五", Active: true},
	)
	pool := []domain.DayEntry{
		{Date: "2026-03-02", AreaAssignments: map[string][]string{"教室": {"张三", "李四"}}},
		{Date: "2026-03-03", AreaAssignments: map[string][]string{"教室": {"王五"}}},
	}

	assert.Equal(t, 3, AnchorID(pool, roster, "2026-03-04", domain.ApplyModeAppend, []string{"教室"}))
}

func TestAnchorIDIgnoresEntriesFromStartDateInReplaceModes(t *testing.T) {
	t.Parallel()

	roster := testRoster(t,
		domain.Person{ID: 1, DisplayName: "张三", Active: true},
		domain.Person{ID: 2, DisplayName: "李四", Active: true},
	)
	pool := []domain.DayEntry{
		{Date: "2026-03-02", AreaAssignments: map[string][]string{"教室": {"张三"}}},
		{Date: "2026-03-05", AreaAssignments: map[string][]string{"教室": {"李四"}}},
	}

	// The 03-05 entry is being replaced, so it must not supply the anchor.
	assert.Equal(t, 1, AnchorID(pool, roster, "2026-03-05", domain.ApplyModeReplaceFuture, []string{"教室"}))
}

func TestAnchorIDSkipsInactiveAndEmptyAssignments(t *testing.T) {
	t.Parallel()

	roster := testRoster(t,
		domain.Person{ID: 1, DisplayName: "张三", Active: true},
		domain.Person{ID: 2, DisplayName: "李四", Active: false},
	)
	pool := []domain.DayEntry{
		{Date: "2026-03-02", AreaAssignments: map[string][]string{"教室": {"张三"}}},
		{Date: "2026-03-03", AreaAssignments: map[string][]string{"教室": {}}},
		{Date: "2026-03-04", AreaAssignments: map[string][]string{"教室": {"李四"}}},
	}

	assert.Equal(t, 1, AnchorID(pool, roster, "2026-03-05", domain.ApplyModeAppend, []string{"教室"}))
}

func TestAnchorIDUsesConfiguredAreaOrder(t *testing.T) {
	t.Parallel()

	roster := testRoster(t,
		domain.Person{ID: 1, DisplayName: "张三", Active: true},
		domain.Person{ID: 2, DisplayName: "李四", Active: true},
		domain.Person{ID: 3, DisplayName: "王五", Active: true},
	)
	pool := []domain.DayEntry{
		{Date: "2026-03-02", AreaAssignments: map[string][]string{
			"教室":  {"张三"},
			"清洁区": {"王五"},
		}},
	}

	// Both areas end on an active id; the first configured area decides,
	// and repeated calls must agree.
	for range 20 {
		assert.Equal(t, 1, AnchorID(pool, roster, "2026-03-03", domain.ApplyModeAppend, []string{"教室", "清洁区"}))
	}
}

func TestAnchorIDOrdersUnconfiguredAreasSorted(t *testing.T) {
	t.Parallel()

	roster := testRoster(t,
		domain.Person{ID: 1, DisplayName: "张三", Active: true},
		domain.Person{ID: 2, DisplayName: "李四", Active: true},
	)
	pool := []domain.DayEntry{
		{Date: "2026-03-02", AreaAssignments: map[string][]string{
			"b区": {"李四"},
			"a区": {"张三"},
		}},
	}

	for range 20 {
		assert.Equal(t, 1, AnchorID(pool, roster, "2026-03-03", domain.ApplyModeAppend, nil))
	}
}

func TestAnchorIDFallsBackToHighestActiveID(t *testing.T) {
	t.Parallel()

	roster := testRoster(t,
		domain.Person{ID: 4, DisplayName: "张三", Active: true},
		domain.Person{ID: 9, DisplayName: "李四", Active: true},
	)

	assert.Equal(t, 9, AnchorID(nil, roster, "2026-03-05", domain.ApplyModeAppend, []string{"教室"}))
}
