package application

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/bnema/duty-agent/internal/domain"
	"github.com/bnema/duty-agent/internal/ports"
	"github.com/google/uuid"
)

const defaultInstruction = "按照要求排班"

// ChatClientFactory builds a transport bound to the run's resolved
// endpoint. The factory indirection exists because base_url, model, and
// stream mode can all be overridden per run by the host request.
type ChatClientFactory func(baseURL, model string, stream bool) ports.ChatClient

// Scheduler drives one scheduling run end to end: prompt construction with
// calendar grounding, the model call, normalization, fairness
// reconciliation, and the idempotent pool merge.
type Scheduler struct {
	rosterSource ports.RosterSource
	stateRepo    ports.StateRepository
	newChat      ChatClientFactory
	clock        ports.Clock
	defaults     RunDefaults
}

func NewScheduler(rosterSource ports.RosterSource, stateRepo ports.StateRepository, newChat ChatClientFactory, clock ports.Clock, defaults RunDefaults) *Scheduler {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Scheduler{
		rosterSource: rosterSource,
		stateRepo:    stateRepo,
		newChat:      newChat,
		clock:        clock,
		defaults:     defaults,
	}
}

// Run executes one scheduling run and persists the updated state. The
// returned result carries the raw model response for the host; all failures
// leave the persisted state untouched.
func (s *Scheduler) Run(ctx context.Context, req domain.RunRequest, progress ports.Progress) (ports.RunResult, error) {
	cfg, err := ResolveRunConfig(s.defaults, req)
	if err != nil {
		return ports.RunResult{}, err
	}

	roster, err := s.rosterSource.Load(ctx)
	if err != nil {
		return ports.RunResult{}, fmt.Errorf("load roster: %w", err)
	}

	state, err := s.stateRepo.Load(ctx)
	if err != nil {
		return ports.RunResult{}, fmt.Errorf("load state: %w", err)
	}

	today := s.clock.Now()
	startDate := today.Format(domain.DateLayout)
	if req.ApplyMode == domain.ApplyModeAppend {
		if last, ok := lastPoolDate(state.Pool); ok {
			next, _ := domain.ParseEntryDate(last)
			startDate = next.AddDate(0, 0, 1).Format(domain.DateLayout)
		}
	}

	instruction := req.Instruction
	if instruction == "" {
		instruction = defaultInstruction
	}

	activeSet := roster.ActiveSet()
	debtIDs := FilterKnownIDs(state.Fairness.DebtIDs, activeSet)
	creditIDs := FilterKnownIDs(state.Fairness.CreditIDs, activeSet)

	idLow, idHigh := roster.IDRange()
	promptInput := PromptInput{
		IDRangeLow:  idLow,
		IDRangeHigh: idHigh,
		DisabledIDs: roster.DisabledIDs(),
		AnchorID:    AnchorID(state.Pool, roster, startDate, req.ApplyMode, cfg.AreaNames),
		CurrentTime: today.Format("2006-01-02 15:04"),
		Instruction: Anonymize(instruction, roster.NameToID),
		DutyRule:    Anonymize(cfg.DutyRule, roster.NameToID),
		AreaNames:   cfg.AreaNames,
		DebtIDs:     debtIDs,
		CreditIDs:   creditIDs,
		MemoryNote:  strings.TrimSpace(state.Fairness.MemoryNote),
		Calendar:    BuildCalendarAnchor(cfg.AutoRunMode, cfg.AutoRunParameter, cfg.PerDay, len(roster.ActiveIDs()), today, cfg.SkipWeekends),
	}

	chat := s.newChat(cfg.BaseURL, cfg.Model, cfg.Stream)
	parsed, raw, err := chat.Complete(ctx, BuildPromptMessages(promptInput), progress)
	if err != nil {
		return ports.RunResult{}, fmt.Errorf("model call: %w", err)
	}

	if err := ValidateScheduleEntries(parsed["schedule"]); err != nil {
		return ports.RunResult{}, err
	}

	normalized := NormalizeSchedule(parsed["schedule"], roster.ActiveIDs(), cfg.AreaNames, cfg.AreaQuotas, cfg.PerDay)

	state.Fairness.MemoryNote = strings.TrimSpace(coerceString(parsed["next_run_note"]))
	state.Fairness.DebtIDs = ReconcileDebts(debtIDs, extractIDs(parsed["new_debt_ids"], activeSet, math.MaxInt), normalized)
	state.Fairness.CreditIDs = ReconcileCredits(creditIDs, extractIDs(parsed["new_credit_ids"], activeSet, math.MaxInt), normalized)

	restored := RestoreSchedule(normalized, roster, cfg.AreaNames, req.ExistingNotes)
	if len(restored) == 0 {
		return ports.RunResult{}, domain.ErrEmptySchedule
	}
	state.Pool = MergePool(state.Pool, restored, req.ApplyMode, startDate)

	if err := s.stateRepo.Save(ctx, state); err != nil {
		return ports.RunResult{}, fmt.Errorf("save state: %w", err)
	}

	return ports.RunResult{
		RunID:      uuid.NewString(),
		Status:     "success",
		AIResponse: truncateRunes(raw, cfg.ResponseMaxChars),
	}, nil
}

func lastPoolDate(pool []domain.DayEntry) (string, bool) {
	var last string
	for _, entry := range pool {
		if _, ok := domain.ParseEntryDate(entry.Date); !ok {
			continue
		}
		if entry.Date > last {
			last = entry.Date
		}
	}
	return last, last != ""
}

func truncateRunes(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}
