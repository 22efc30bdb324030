package statejson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bnema/duty-agent/internal/ports"
)

// resultSchema is the outcome document the host polls for after the
// process exits.
type resultSchema struct {
	RunID      string `json:"run_id"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	AIResponse string `json:"ai_response,omitempty"`
}

// ResultWriter writes the run outcome document with the same atomic
// rename discipline as the state repository.
type ResultWriter struct {
	resultPath string
}

var _ ports.ResultWriter = (*ResultWriter)(nil)

func NewResultWriter(resultPath string) (*ResultWriter, error) {
	if resultPath == "" {
		return nil, errors.New("result path is empty")
	}

	absPath, err := filepath.Abs(resultPath)
	if err != nil {
		return nil, fmt.Errorf("resolve result path: %w", err)
	}

	return &ResultWriter{resultPath: filepath.Clean(absPath)}, nil
}

func (w *ResultWriter) Write(ctx context.Context, result ports.RunResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(resultSchema{
		RunID:      result.RunID,
		Status:     result.Status,
		Message:    result.Message,
		AIResponse: result.AIResponse,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result file: %w", err)
	}

	return writeFileAtomic(w.resultPath, data)
}
