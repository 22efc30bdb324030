package application

import (
	"fmt"
	"strings"

	"github.com/bnema/duty-agent/internal/domain"
)

// Defaults for scheduling knobs when neither settings nor the run request
// supply a value.
const (
	DefaultPerDay      = 2
	MinPerDay          = 1
	MaxPerDay          = 30
	defaultRespMaxChar = 20000
)

// DefaultAreaNames returns the built-in duty zones used when nothing is
// configured.
func DefaultAreaNames() []string {
	return []string{"教室", "清洁区"}
}

// RunConfig is the fully resolved configuration of a single run: persisted
// settings with request overrides applied and all values clamped to their
// legal ranges. Timeout and retry knobs live on the transport config; what
// is here is everything the orchestrator itself consults.
type RunConfig struct {
	BaseURL          string
	Model            string
	Stream           bool
	PerDay           int
	AreaNames        []string
	AreaQuotas       map[string]int
	DutyRule         string
	AutoRunMode      string
	AutoRunParameter string
	SkipWeekends     bool
	ResponseMaxChars int
}

// RunDefaults carries the settings-file values a RunRequest may override.
type RunDefaults struct {
	BaseURL          string
	Model            string
	Stream           bool
	PerDay           int
	AreaNames        []string
	AreaQuotas       map[string]int
	DutyRule         string
	AutoRunMode      string
	AutoRunParameter string
	SkipWeekends     bool
	ResponseMaxChars int
}

// ResolveRunConfig merges a run request over the settings defaults.
// base_url and model are required once merged; everything else falls back.
func ResolveRunConfig(defaults RunDefaults, req domain.RunRequest) (RunConfig, error) {
	cfg := RunConfig{
		BaseURL:          strings.TrimSpace(defaults.BaseURL),
		Model:            strings.TrimSpace(defaults.Model),
		Stream:           defaults.Stream,
		PerDay:           clampInt(defaults.PerDay, DefaultPerDay, MinPerDay, MaxPerDay),
		AreaNames:        defaults.AreaNames,
		DutyRule:         strings.TrimSpace(defaults.DutyRule),
		AutoRunMode:      strings.TrimSpace(defaults.AutoRunMode),
		AutoRunParameter: strings.TrimSpace(defaults.AutoRunParameter),
		SkipWeekends:     defaults.SkipWeekends,
		ResponseMaxChars: defaults.ResponseMaxChars,
	}

	if req.BaseURL != "" {
		cfg.BaseURL = req.BaseURL
	}
	if req.Model != "" {
		cfg.Model = req.Model
	}
	if req.Stream != nil {
		cfg.Stream = *req.Stream
	}
	if req.PerDay != 0 {
		cfg.PerDay = clampInt(req.PerDay, DefaultPerDay, MinPerDay, MaxPerDay)
	}
	if len(req.AreaNames) > 0 {
		cfg.AreaNames = req.AreaNames
	}
	if req.DutyRule != "" {
		cfg.DutyRule = req.DutyRule
	}
	if req.AutoRunMode != "" {
		cfg.AutoRunMode = req.AutoRunMode
	}
	if req.AutoRunParameter != "" {
		cfg.AutoRunParameter = req.AutoRunParameter
	}

	if len(cfg.AreaNames) == 0 {
		cfg.AreaNames = DefaultAreaNames()
	}
	if cfg.ResponseMaxChars <= 0 {
		cfg.ResponseMaxChars = defaultRespMaxChar
	}

	quotaSource := defaults.AreaQuotas
	if len(req.AreaPerDayCounts) > 0 {
		quotaSource = req.AreaPerDayCounts
	}
	cfg.AreaQuotas = normalizeAreaQuotas(cfg.AreaNames, quotaSource, cfg.PerDay)

	if cfg.BaseURL == "" || cfg.Model == "" {
		return RunConfig{}, fmt.Errorf("missing config field: base_url/model")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return cfg, nil
}

// normalizeAreaQuotas gives every configured area a quota: the configured
// per-area value clamped to range, else the per-day fallback.
func normalizeAreaQuotas(areaNames []string, raw map[string]int, fallback int) map[string]int {
	fallback = clampInt(fallback, DefaultPerDay, MinPerDay, MaxPerDay)

	quotas := make(map[string]int, len(areaNames))
	for _, area := range areaNames {
		if value, ok := raw[area]; ok {
			quotas[area] = clampInt(value, fallback, MinPerDay, MaxPerDay)
		} else {
			quotas[area] = fallback
		}
	}
	return quotas
}

func clampInt(value, fallback, minimum, maximum int) int {
	if value == 0 {
		return fallback
	}
	if value < minimum {
		return minimum
	}
	if value > maximum {
		return maximum
	}
	return value
}
