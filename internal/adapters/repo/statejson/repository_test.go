package statejson

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/bnema/duty-agent/internal/domain"
	"github.com/bnema/duty-agent/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	statePath := filepath.Join(t.TempDir(), "duty_state.json")
	repo, err := NewRepository(statePath)
	require.NoError(t, err)

	state := domain.State{
		Pool: []domain.DayEntry{
			{
				Date:            "2026-03-02",
				Day:             "Monday",
				AreaAssignments: map[string][]string{"教室": {"张三", "李四"}, "清洁区": {}},
				Note:            "开学第一天",
			},
			{
				Date:            "2026-03-03",
				Day:             "Tuesday",
				AreaAssignments: map[string][]string{"教室": {"王五"}},
			},
		},
		Fairness: domain.FairnessState{
			DebtIDs:    []int{2, 5},
			CreditIDs:  []int{7},
			MemoryNote: "pointer at 5",
		},
	}

	require.NoError(t, repo.Save(context.Background(), state))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, state, got)
}

func TestRepositoryMissingFileYieldsEmptyState(t *testing.T) {
	t.Parallel()

	repo, err := NewRepository(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.Pool)
	assert.Empty(t, got.Fairness.DebtIDs)
	assert.Empty(t, got.Fairness.CreditIDs)
	assert.Empty(t, got.Fairness.MemoryNote)
}

func TestRepositoryRejectsCorruptDocument(t *testing.T) {
	t.Parallel()

	statePath := filepath.Join(t.TempDir(), "duty_state.json")
	require.NoError(t, os.WriteFile(statePath, []byte("{not json"), 0o600))

	repo, err := NewRepository(statePath)
	require.NoError(t, err)

	_, err = repo.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode state file")
}

func TestRepositoryWriteIsAtomicAndPrivate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	statePath := filepath.Join(dir, "duty_state.json")
	repo, err := NewRepository(statePath)
	require.NoError(t, err)

	require.NoError(t, repo.Save(context.Background(), domain.State{}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must not survive the rename")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(statePath)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestRepositoryDocumentUsesContractFieldNames(t *testing.T) {
	t.Parallel()

	statePath := filepath.Join(t.TempDir(), "duty_state.json")
	repo, err := NewRepository(statePath)
	require.NoError(t, err)

	state := domain.State{
		Pool:     []domain.DayEntry{{Date: "2026-03-02", AreaAssignments: map[string][]string{"教室": {"张三"}}}},
		Fairness: domain.FairnessState{DebtIDs: []int{3}},
	}
	require.NoError(t, repo.Save(context.Background(), state))

	data, err := os.ReadFile(statePath)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "schedule_pool")
	assert.Contains(t, doc, "debt_list")
	assert.Contains(t, doc, "credit_list")
}

func TestRepositoryCancelledContext(t *testing.T) {
	t.Parallel()

	repo, err := NewRepository(filepath.Join(t.TempDir(), "duty_state.json"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = repo.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, repo.Save(ctx, domain.State{}), context.Canceled)
}

func TestResultWriterWritesOutcomeDocument(t *testing.T) {
	t.Parallel()

	resultPath := filepath.Join(t.TempDir(), "ipc_result.json")
	writer, err := NewResultWriter(resultPath)
	require.NoError(t, err)

	result := ports.RunResult{
		RunID:      "run-123",
		Status:     "success",
		AIResponse: `{"schedule":[]}`,
	}
	require.NoError(t, writer.Write(context.Background(), result))

	data, err := os.ReadFile(resultPath)
	require.NoError(t, err)

	var doc resultSchema
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "run-123", doc.RunID)
	assert.Equal(t, "success", doc.Status)
	assert.Empty(t, doc.Message)
	assert.Equal(t, result.AIResponse, doc.AIResponse)
}

func TestResultWriterErrorDocumentCarriesMessage(t *testing.T) {
	t.Parallel()

	resultPath := filepath.Join(t.TempDir(), "ipc_result.json")
	writer, err := NewResultWriter(resultPath)
	require.NoError(t, err)

	result := ports.RunResult{RunID: "run-err", Status: "error", Message: "model call: request timed out"}
	require.NoError(t, writer.Write(context.Background(), result))

	data, err := os.ReadFile(resultPath)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "error", doc["status"])
	assert.Equal(t, "model call: request timed out", doc["message"])
	assert.NotContains(t, doc, "ai_response")
}
