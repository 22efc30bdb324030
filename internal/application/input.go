package application

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bnema/duty-agent/internal/domain"
)

// ParseRunRequest decodes the host's one-shot instruction document. A
// nested "config" object, when present, is merged over the top level; a
// top-level "instruction" always wins over one nested in config.
func ParseRunRequest(data []byte) (domain.RunRequest, error) {
	raw := map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(stripBOM(data), &raw); err != nil {
			return domain.RunRequest{}, fmt.Errorf("decode run request: %w", err)
		}
	}
	raw = mergeInputConfig(raw)

	req := domain.RunRequest{
		Instruction:      strings.TrimSpace(coerceString(raw["instruction"])),
		ApplyMode:        domain.ApplyMode(strings.ToLower(strings.TrimSpace(coerceString(raw["apply_mode"])))),
		BaseURL:          strings.TrimSpace(coerceString(raw["base_url"])),
		Model:            strings.TrimSpace(coerceString(raw["model"])),
		DutyRule:         strings.TrimSpace(coerceString(raw["duty_rule"])),
		AutoRunMode:      strings.TrimSpace(coerceString(raw["auto_run_mode"])),
		AutoRunParameter: strings.TrimSpace(coerceString(raw["auto_run_parameter"])),
	}

	if req.ApplyMode == "" {
		req.ApplyMode = domain.ApplyModeAppend
	}
	if !req.ApplyMode.Valid() {
		return domain.RunRequest{}, fmt.Errorf("unsupported apply_mode %q", req.ApplyMode)
	}

	if stream, ok := lookupBool(raw, "llm_stream", "stream"); ok {
		req.Stream = &stream
	}
	if perDay, ok := coerceInt(raw["per_day"]); ok {
		req.PerDay = perDay
	}
	req.AreaNames = normalizeAreaNames(raw["area_names"])
	req.AreaPerDayCounts = rawAreaCounts(raw["area_per_day_counts"])
	req.ExistingNotes = parseNotes(raw["existing_notes"])

	return req, nil
}

func mergeInputConfig(input map[string]any) map[string]any {
	nested, ok := input["config"].(map[string]any)
	if !ok {
		return input
	}

	merged := make(map[string]any, len(input)+len(nested))
	for key, value := range input {
		merged[key] = value
	}
	for key, value := range nested {
		merged[key] = value
	}
	if instruction, ok := input["instruction"]; ok {
		merged["instruction"] = instruction
	}
	return merged
}

func parseNotes(raw any) map[string]string {
	rawMap, ok := raw.(map[string]any)
	if !ok {
		return map[string]string{}
	}

	notes := make(map[string]string, len(rawMap))
	for date, value := range rawMap {
		if note := coerceString(value); note != "" {
			notes[date] = note
		}
	}
	return notes
}

// normalizeAreaNames trims, deduplicates, and preserves order. Nil when the
// value is absent or carries no usable name, so settings defaults apply.
func normalizeAreaNames(raw any) []string {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}

	seen := make(map[string]struct{}, len(list))
	names := make([]string, 0, len(list))
	for _, item := range list {
		name := strings.TrimSpace(coerceString(item))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	if len(names) == 0 {
		return nil
	}
	return names
}

func rawAreaCounts(raw any) map[string]int {
	rawMap, ok := raw.(map[string]any)
	if !ok {
		return nil
	}

	counts := make(map[string]int, len(rawMap))
	for area, value := range rawMap {
		area = strings.TrimSpace(area)
		if area == "" {
			continue
		}
		if count, ok := coerceInt(value); ok {
			counts[area] = count
		}
	}
	if len(counts) == 0 {
		return nil
	}
	return counts
}

func lookupBool(raw map[string]any, keys ...string) (bool, bool) {
	for _, key := range keys {
		value, present := raw[key]
		if !present {
			continue
		}
		if parsed, ok := parseBool(value); ok {
			return parsed, true
		}
	}
	return false, false
}

func parseBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on":
			return true, true
		case "false", "0", "no", "off":
			return false, true
		}
	case float64:
		return v != 0, true
	}
	return false, false
}

func stripBOM(data []byte) []byte {
	return []byte(strings.TrimPrefix(string(data), "\uFEFF"))
}
