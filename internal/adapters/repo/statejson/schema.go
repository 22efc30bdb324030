package statejson

import "github.com/bnema/duty-agent/internal/domain"

// fileSchema is the on-disk shape of the state document. The host reads
// the same file, so field names are part of the external contract.
type fileSchema struct {
	SchedulePool []dayEntrySchema `json:"schedule_pool"`
	DebtList     []int            `json:"debt_list"`
	CreditList   []int            `json:"credit_list"`
	NextRunNote  string           `json:"next_run_note,omitempty"`
}

type dayEntrySchema struct {
	Date            string              `json:"date"`
	Day             string              `json:"day,omitempty"`
	AreaAssignments map[string][]string `json:"area_assignments"`
	Note            string              `json:"note,omitempty"`
}

func (f *fileSchema) applyDefaults() {
	if f.SchedulePool == nil {
		f.SchedulePool = []dayEntrySchema{}
	}
	if f.DebtList == nil {
		f.DebtList = []int{}
	}
	if f.CreditList == nil {
		f.CreditList = []int{}
	}
}

func toSchema(state domain.State) fileSchema {
	pool := make([]dayEntrySchema, 0, len(state.Pool))
	for _, entry := range state.Pool {
		pool = append(pool, dayEntrySchema{
			Date:            entry.Date,
			Day:             entry.Day,
			AreaAssignments: entry.AreaAssignments,
			Note:            entry.Note,
		})
	}

	file := fileSchema{
		SchedulePool: pool,
		DebtList:     state.Fairness.DebtIDs,
		CreditList:   state.Fairness.CreditIDs,
		NextRunNote:  state.Fairness.MemoryNote,
	}
	file.applyDefaults()

	return file
}

func fromSchema(file fileSchema) domain.State {
	pool := make([]domain.DayEntry, 0, len(file.SchedulePool))
	for _, entry := range file.SchedulePool {
		assignments := entry.AreaAssignments
		if assignments == nil {
			assignments = map[string][]string{}
		}
		pool = append(pool, domain.DayEntry{
			Date:            entry.Date,
			Day:             entry.Day,
			AreaAssignments: assignments,
			Note:            entry.Note,
		})
	}

	return domain.State{
		Pool: pool,
		Fairness: domain.FairnessState{
			DebtIDs:    file.DebtList,
			CreditIDs:  file.CreditList,
			MemoryNote: file.NextRunNote,
		},
	}
}
