// Package settings loads and edits the TOML settings file kept in the
// data directory. The API key is deliberately not a setting; it arrives
// over stdin or the environment.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configName      = "settings"
	configType      = "toml"
	settingsFile    = "settings.toml"
	settingsDirMode = 0o700
	settingsMode    = 0o600
	tempFilePattern = ".duty-settings-*.toml.tmp"
)

// Settings is the fully resolved settings document with defaults applied.
type Settings struct {
	LLM        LLMSettings
	Scheduling SchedulingSettings
}

type LLMSettings struct {
	BaseURL             string
	Model               string
	Stream              bool
	Temperature         float64
	RequestTimeout      time.Duration
	RetryMax            int
	RetryBackoff        time.Duration
	RepairMax           int
	ResponseMaxChars    int
	ProgressIntervalsMS int
}

type SchedulingSettings struct {
	PerDay           int
	AreaNames        []string
	AreaPerDay       map[string]int
	AutoRunMode      string
	AutoRunParameter string
	SkipWeekends     bool
	DutyRule         string
}

type Store struct {
	path string
}

func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		return nil, errors.New("data directory is empty")
	}

	absDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data directory: %w", err)
	}

	return &Store{path: filepath.Join(filepath.Clean(absDir), settingsFile)}, nil
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file. A missing file yields pure defaults so a
// fresh data directory works before `duty config set` has ever run.
func (s *Store) Load() (Settings, error) {
	cfg := viper.New()
	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Dir(s.path))
	applyDefaults(cfg)

	if err := cfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read settings file: %w", err)
		}
	}

	return Settings{
		LLM: LLMSettings{
			BaseURL:             cfg.GetString("llm.base_url"),
			Model:               cfg.GetString("llm.model"),
			Stream:              cfg.GetBool("llm.stream"),
			Temperature:         cfg.GetFloat64("llm.temperature"),
			RequestTimeout:      time.Duration(cfg.GetInt("llm.request_timeout_seconds")) * time.Second,
			RetryMax:            cfg.GetInt("llm.retry_max"),
			RetryBackoff:        time.Duration(cfg.GetInt("llm.retry_backoff_seconds")) * time.Second,
			RepairMax:           cfg.GetInt("llm.repair_max"),
			ResponseMaxChars:    cfg.GetInt("llm.response_max_chars"),
			ProgressIntervalsMS: cfg.GetInt("llm.progress_interval_ms"),
		},
		Scheduling: SchedulingSettings{
			PerDay:           cfg.GetInt("scheduling.per_day"),
			AreaNames:        cfg.GetStringSlice("scheduling.area_names"),
			AreaPerDay:       toIntMap(cfg.GetStringMap("scheduling.area_per_day")),
			AutoRunMode:      cfg.GetString("scheduling.auto_run_mode"),
			AutoRunParameter: cfg.GetString("scheduling.auto_run_parameter"),
			SkipWeekends:     cfg.GetBool("scheduling.skip_weekends"),
			DutyRule:         cfg.GetString("scheduling.duty_rule"),
		},
	}, nil
}

func applyDefaults(cfg *viper.Viper) {
	cfg.SetDefault("llm.stream", true)
	cfg.SetDefault("llm.temperature", 0.1)
	cfg.SetDefault("llm.request_timeout_seconds", 120)
	cfg.SetDefault("llm.retry_max", 2)
	cfg.SetDefault("llm.retry_backoff_seconds", 2)
	cfg.SetDefault("llm.repair_max", 1)
	cfg.SetDefault("llm.response_max_chars", 20000)
	cfg.SetDefault("llm.progress_interval_ms", 200)
	cfg.SetDefault("scheduling.per_day", 2)
	cfg.SetDefault("scheduling.skip_weekends", false)
}

// Set updates one dotted key in the settings file and rewrites it
// atomically. Values that parse as JSON keep their type; everything else
// is stored as a string.
func (s *Store) Set(key, rawValue string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("settings key is empty")
	}
	if strings.HasPrefix(key, "api_key") || strings.Contains(key, ".api_key") {
		return errors.New("the api key is never stored in the settings file")
	}

	document := map[string]any{}
	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &document); err != nil {
			return fmt.Errorf("decode settings file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return fmt.Errorf("read settings file: %w", err)
	}

	setNested(document, strings.Split(key, "."), parseValue(rawValue))

	encoded, err := toml.Marshal(document)
	if err != nil {
		return fmt.Errorf("encode settings file: %w", err)
	}

	return writeFileAtomic(s.path, encoded)
}

func parseValue(raw string) any {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err == nil {
		switch value.(type) {
		case bool, float64, string, []any:
			return value
		}
	}
	return raw
}

func setNested(document map[string]any, path []string, value any) {
	current := document
	for _, segment := range path[:len(path)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[segment] = next
		}
		current = next
	}
	current[path[len(path)-1]] = value
}

func toIntMap(raw map[string]any) map[string]int {
	if len(raw) == 0 {
		return nil
	}

	result := make(map[string]int, len(raw))
	for key, value := range raw {
		switch typed := value.(type) {
		case int:
			result[key] = typed
		case int64:
			result[key] = int(typed)
		case float64:
			result[key] = int(typed)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), settingsDirMode); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp settings file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp settings file: %w", err)
	}

	if err := tempFile.Chmod(settingsMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp settings file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp settings file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}

	cleanup = false
	return nil
}
