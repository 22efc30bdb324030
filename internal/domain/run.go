package domain

type ApplyMode string

const (
	ApplyModeAppend         ApplyMode = "append"
	ApplyModeReplaceAll     ApplyMode = "replace_all"
	ApplyModeReplaceFuture  ApplyMode = "replace_future"
	ApplyModeReplaceOverlap ApplyMode = "replace_overlap"
)

func (m ApplyMode) Valid() bool {
	switch m {
	case ApplyModeAppend, ApplyModeReplaceAll, ApplyModeReplaceFuture, ApplyModeReplaceOverlap:
		return true
	default:
		return false
	}
}

// RunRequest is the one-shot instruction document for a single scheduling
// run. It is created per invocation and discarded afterwards; any override
// fields left at their zero value fall back to the persisted settings.
type RunRequest struct {
	Instruction   string
	ApplyMode     ApplyMode
	ExistingNotes map[string]string

	// Host-supplied overrides merged over the settings file.
	BaseURL          string
	Model            string
	Stream           *bool
	PerDay           int
	AreaNames        []string
	AreaPerDayCounts map[string]int
	DutyRule         string
	AutoRunMode      string
	AutoRunParameter string
}
