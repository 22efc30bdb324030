package ports

import (
	"context"

	"github.com/bnema/duty-agent/internal/domain"
)

type RosterSource interface {
	Load(ctx context.Context) (*domain.Roster, error)
}
