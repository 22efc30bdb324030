package ports

import (
	"context"

	"github.com/bnema/duty-agent/internal/domain"
)

type StateRepository interface {
	Load(ctx context.Context) (domain.State, error)
	Save(ctx context.Context, state domain.State) error
}

// RunResult is the outcome document handed back to the host process.
type RunResult struct {
	RunID      string
	Status     string
	Message    string
	AIResponse string
}

type ResultWriter interface {
	Write(ctx context.Context, result RunResult) error
}
