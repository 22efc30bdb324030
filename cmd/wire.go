package cmd

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/bnema/duty-agent/internal/adapters/llm/openai"
	"github.com/bnema/duty-agent/internal/adapters/repo/statejson"
	"github.com/bnema/duty-agent/internal/adapters/roster/csvroster"
	"github.com/bnema/duty-agent/internal/adapters/secrets/chain"
	"github.com/bnema/duty-agent/internal/adapters/secrets/envkey"
	"github.com/bnema/duty-agent/internal/adapters/secrets/stdinkey"
	settingsadapter "github.com/bnema/duty-agent/internal/adapters/settings"
	"github.com/bnema/duty-agent/internal/application"
	"github.com/bnema/duty-agent/internal/ports"
)

const (
	rosterFile = "roster.csv"
	stateFile  = "state.json"
	inputFile  = "ipc_input.json"
	resultFile = "ipc_result.json"
)

type app struct {
	dataDir      string
	settings     settingsadapter.Settings
	settingStore *settingsadapter.Store
	rosterSource ports.RosterSource
	stateRepo    ports.StateRepository
	resultWriter ports.ResultWriter
	keySource    ports.KeySource
	httpClient   *http.Client
	clock        ports.Clock
}

func wireApp(dataDir string) (*app, error) {
	settingStore, err := settingsadapter.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("wire settings store: %w", err)
	}

	loaded, err := settingStore.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	rosterSource, err := csvroster.NewSource(filepath.Join(dataDir, rosterFile))
	if err != nil {
		return nil, fmt.Errorf("wire roster source: %w", err)
	}

	stateRepo, err := statejson.NewRepository(filepath.Join(dataDir, stateFile))
	if err != nil {
		return nil, fmt.Errorf("wire state repository: %w", err)
	}

	resultWriter, err := statejson.NewResultWriter(filepath.Join(dataDir, resultFile))
	if err != nil {
		return nil, fmt.Errorf("wire result writer: %w", err)
	}

	keySource, err := chain.NewSource(stdinkey.NewSource(), envkey.NewSource())
	if err != nil {
		return nil, fmt.Errorf("wire key source chain: %w", err)
	}

	return &app{
		dataDir:      dataDir,
		settings:     loaded,
		settingStore: settingStore,
		rosterSource: rosterSource,
		stateRepo:    stateRepo,
		resultWriter: resultWriter,
		keySource:    keySource,
		httpClient:   http.DefaultClient,
		clock:        ports.SystemClock{},
	}, nil
}

func (a *app) runDefaults() application.RunDefaults {
	return application.RunDefaults{
		BaseURL:          a.settings.LLM.BaseURL,
		Model:            a.settings.LLM.Model,
		Stream:           a.settings.LLM.Stream,
		PerDay:           a.settings.Scheduling.PerDay,
		AreaNames:        a.settings.Scheduling.AreaNames,
		AreaQuotas:       a.settings.Scheduling.AreaPerDay,
		DutyRule:         a.settings.Scheduling.DutyRule,
		AutoRunMode:      a.settings.Scheduling.AutoRunMode,
		AutoRunParameter: a.settings.Scheduling.AutoRunParameter,
		SkipWeekends:     a.settings.Scheduling.SkipWeekends,
		ResponseMaxChars: a.settings.LLM.ResponseMaxChars,
	}
}

func (a *app) transportConfig() openai.Config {
	return openai.Config{
		RequestTimeout:   a.settings.LLM.RequestTimeout,
		RetryMax:         a.settings.LLM.RetryMax,
		RetryBackoff:     a.settings.LLM.RetryBackoff,
		RepairMax:        a.settings.LLM.RepairMax,
		Temperature:      a.settings.LLM.Temperature,
		ProgressInterval: time.Duration(a.settings.LLM.ProgressIntervalsMS) * time.Millisecond,
	}
}

func (a *app) chatFactory(apiKey string) application.ChatClientFactory {
	return func(baseURL, model string, stream bool) ports.ChatClient {
		client, err := openai.NewClient(baseURL, model, apiKey, stream, a.transportConfig(), a.httpClient)
		if err != nil {
			return errClient{err: err}
		}
		return client
	}
}

// errClient defers construction failures into the call so the factory
// keeps its simple signature.
type errClient struct{ err error }

func (c errClient) Complete(_ context.Context, _ []ports.ChatMessage, _ ports.Progress) (map[string]any, string, error) {
	return nil, "", c.err
}
