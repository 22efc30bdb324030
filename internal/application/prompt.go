package application

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/bnema/duty-agent/internal/domain"
	"github.com/bnema/duty-agent/internal/ports"
)

// PromptInput carries everything the composer needs for one run. All free
// text (Instruction, DutyRule) must already be anonymized.
type PromptInput struct {
	IDRangeLow  int
	IDRangeHigh int
	DisabledIDs []int
	AnchorID    int
	CurrentTime string
	Instruction string
	DutyRule    string
	AreaNames   []string
	DebtIDs     []int
	CreditIDs   []int
	MemoryNote  string
	Calendar    string
}

const systemPromptTemplate = `# Role
You are the Duty-Agent, an intelligent scheduling assistant.
Your goal is to generate a schedule that balances **Hard Constraints** (Sick leave), **Soft Constraints** (Team training), and **Fairness** (Debt repayment).

# Input Context
- IDs are a continuous sequence (e.g., 1, 2, 3...).
- You have a ` + "`Main_Pointer`" + ` starting at ` + "`Last ID`" + `.

# The "Three-Queue" Protocol
1. **Debt Queue**: Stores IDs who owe duty (skipped due to soft conflicts, or removed via manual edit). These MUST be cleared first.
2. **Credit Queue**: Stores IDs who did extra volunteer work (added via manual edit). When ` + "`Main_Pointer`" + ` naturally reaches them, SKIP them once and remove from Credit. They earned immunity.
3. **Main Pointer**: Tracks the highest ID accessed in the roster. It **ONLY increments**. It never resets or goes back.

# The "Patch" Principle (CRITICAL)
Your output acts as a JSON PATCH to an existing live scheduling database.
1. ONLY generate schedule entries for the specific dates requested by the User Instruction.
2. OVER-GENERATION IS FATAL: If the user asks for "Thursday and Friday" (2 days), you MUST output exactly 2 entries. Do NOT generate Saturday, Sunday, or next week.
3. Generating unrequested future dates will irreversibly DESTROY the user's existing future schedules.
4. When in doubt, generate FEWER days rather than more.

# Process (Chain of Thought)
For each scheduling request, perform these steps in your ` + "`thinking_trace`" + `:
0. **Intent Parsing**: Read the User Instruction carefully. Count exactly how many days are requested. List the target dates explicitly. This is your contract — do NOT exceed it.
1. **Date & Conflict**: Calculate the date. Identify who is blocked (Sick or Team).
2. **Check Debt**: Is anyone in ` + "`Debt Queue`" + ` available today?
   - YES: Schedule them first (Backfill).
   - NO: Proceed to step 3.
3. **Advance Pointer**: If more slots are needed, increment ` + "`Main_Pointer`" + `.
   - If New ID is in ` + "`Credit Queue`" + ` -> SKIP them (immunity), remove from Credit, do NOT add to Debt. Increment Pointer again.
   - If New ID is Sick -> Skip permanently (do not add to Debt).
   - If New ID is Team/Soft Conflict -> Skip for today, ADD to ` + "`Debt Queue`" + `, and increment Pointer again.
   - If Valid -> Schedule them.
4. **Flow Control**: Do not exceed daily capacity by too much. Spread debt repayment over multiple days if the queue is large ("Debt Avalanche" prevention).
5. **Final Check**: Before outputting, verify that your schedule array length matches the day count from step 0. If it doesn't, you have a bug.

# Output Schema (Strict JSON)
` + "```json" + `
{
  "thinking_trace": {
    "intent_parsing": "User requested Thursday and Friday. Target day count: 2. I will generate exactly 2 entries.",
    "step_1_analysis": "Date is 2026-02-18. IDs 5,6 are Team (blocked).",
    "step_2_pointer_logic": "Debt Queue is empty. Main Pointer moved from 10 to 12.",
    "step_3_action": "Scheduled 11. 12 is Team, added to Debt. Scheduled 13.",
    "final_check": "Output has 2 entries matching target. Safe to submit."
  },
  "schedule": [
    {
      "date": "YYYY-MM-DD",
      "area_ids": { %s },
      "note": "Brief reason (e.g., 'Backfilled ID 6')"
    }
  ],
  "next_run_note": "CRITICAL: Debt List [12] must be handled next run. Credit List [5] gets immunity next. Current Pointer at 13.",
  "new_debt_ids": [12],
  "new_credit_ids": [5]
}
` + "```" + `
**Important**:
1. The ` + "`next_run_note`" + ` is your "Memory" for the next time you run. You MUST strictly record any remaining Debt List, Credit List, or important context here.
2. ` + "`new_debt_ids`" + `: If you added anyone to the Debt Queue (or if anyone remains in it), you MUST output their IDs here as a list of integers.
3. ` + "`new_credit_ids`" + `: If anyone remains in the Credit Queue after this run (i.e. their immunity was NOT consumed), output their IDs here. If a credit was consumed, remove them from this list.`

// BuildPromptMessages assembles the system and user messages for one run.
func BuildPromptMessages(in PromptInput) []ports.ChatMessage {
	areaSchemaItems := make([]string, 0, len(in.AreaNames))
	for _, name := range in.AreaNames {
		quoted, _ := json.Marshal(name)
		areaSchemaItems = append(areaSchemaItems, fmt.Sprintf("%s: [101, 102]", quoted))
	}

	systemContent := fmt.Sprintf(systemPromptTemplate, strings.Join(areaSchemaItems, ", "))

	if rule := strings.TrimSpace(in.DutyRule); rule != "" {
		systemContent += "\n\n--- User Defined Rules ---\n" + rule
	}

	userParts := []string{
		fmt.Sprintf("ID Range: %d-%d", in.IDRangeLow, in.IDRangeHigh),
		fmt.Sprintf("Disabled IDs: %s", formatIDList(in.DisabledIDs)),
		fmt.Sprintf("Last ID: %d", in.AnchorID),
	}

	if note := strings.TrimSpace(in.MemoryNote); note != "" {
		userParts = append(userParts, "PREVIOUS RUN MEMORY (IMPORTANT): "+note)
	}
	if len(in.DebtIDs) > 0 {
		userParts = append(userParts, fmt.Sprintf(
			"CURRENT DEBT LIST (PRIORITY HIGH): %s. You MUST schedule these IDs first.", formatIDList(in.DebtIDs)))
	}
	if len(in.CreditIDs) > 0 {
		userParts = append(userParts, fmt.Sprintf(
			"CURRENT CREDIT LIST (IMMUNITY): %s. When Main_Pointer reaches these IDs, SKIP them once (free pass) and remove from Credit.", formatIDList(in.CreditIDs)))
	}

	userParts = append(userParts, "Current Time: "+in.CurrentTime)

	if in.Calendar != "" {
		userParts = append(userParts, "\n--- Calendar Anchor (DO NOT VIOLATE) ---\n"+in.Calendar)
	}

	userParts = append(userParts, fmt.Sprintf("Instruction: %q", in.Instruction))

	return []ports.ChatMessage{
		{Role: ports.RoleSystem, Content: systemContent},
		{Role: ports.RoleUser, Content: strings.Join(userParts, "\n")},
	}
}

func formatIDList(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// AnchorID finds the rotation pointer's starting id: the last id referenced
// in any non-empty area list of the most recent relevant pool entry. In
// append mode the whole pool is relevant; in replace modes only entries
// before the run's start date are. Areas are consulted in the configured
// order, then remaining keys sorted, so identical state always yields the
// same anchor. Falls back to the highest active id.
func AnchorID(pool []domain.DayEntry, roster *domain.Roster, startDate string, mode domain.ApplyMode, areaNames []string) int {
	candidates := make([]domain.DayEntry, 0, len(pool))
	for _, entry := range pool {
		if _, ok := domain.ParseEntryDate(entry.Date); !ok {
			continue
		}
		if mode != domain.ApplyModeAppend && entry.Date >= startDate {
			continue
		}
		candidates = append(candidates, entry)
	}
	domain.SortPoolByDate(candidates)

	activeSet := roster.ActiveSet()
	for i := len(candidates) - 1; i >= 0; i-- {
		for _, area := range orderedAreaKeys(candidates[i].AreaAssignments, areaNames) {
			names := candidates[i].AreaAssignments[area]
			if len(names) == 0 {
				continue
			}
			last := strings.TrimSpace(names[len(names)-1])
			id, ok := roster.NameToID[last]
			if !ok {
				continue
			}
			if _, active := activeSet[id]; active {
				return id
			}
		}
	}

	active := roster.ActiveIDs()
	return active[len(active)-1]
}

// orderedAreaKeys lists an entry's area keys with the configured names
// first, then any leftover keys sorted.
func orderedAreaKeys(assignments map[string][]string, areaNames []string) []string {
	keys := make([]string, 0, len(assignments))
	seen := make(map[string]bool, len(assignments))
	for _, name := range areaNames {
		if _, ok := assignments[name]; ok && !seen[name] {
			keys = append(keys, name)
			seen[name] = true
		}
	}
	rest := make([]string, 0, len(assignments))
	for name := range assignments {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
