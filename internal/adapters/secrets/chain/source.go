// Package chain tries key sources in order and keeps the first hit.
package chain

import (
	"context"
	"errors"

	"github.com/bnema/duty-agent/internal/domain"
	"github.com/bnema/duty-agent/internal/ports"
)

type Source struct {
	sources []ports.KeySource
}

var _ ports.KeySource = (*Source)(nil)

var errNoSources = errors.New("key source chain is empty")

func NewSource(sources ...ports.KeySource) (*Source, error) {
	if len(sources) == 0 {
		return nil, errNoSources
	}
	for _, source := range sources {
		if source == nil {
			return nil, errors.New("key source is nil")
		}
	}
	return &Source{sources: sources}, nil
}

// Read walks the chain. A source answering "no key here" passes the turn;
// any other failure is surfaced immediately rather than masked by a later
// source.
func (s *Source) Read(ctx context.Context) (string, error) {
	for _, source := range s.sources {
		key, err := source.Read(ctx)
		if err == nil {
			return key, nil
		}
		if errors.Is(err, domain.ErrMissingAPIKey) {
			continue
		}
		return "", err
	}
	return "", domain.ErrMissingAPIKey
}
