// Package envkey reads the API key from the process environment.
package envkey

import (
	"context"
	"os"
	"strings"

	"github.com/bnema/duty-agent/internal/domain"
	"github.com/bnema/duty-agent/internal/ports"
)

// EnvVar is the variable the host sets when it does not pipe the key.
const EnvVar = "DUTY_AGENT_API_KEY"

type Source struct {
	lookup func(string) (string, bool)
}

var _ ports.KeySource = (*Source)(nil)

func NewSource() *Source {
	return &Source{lookup: os.LookupEnv}
}

func NewSourceFromLookup(lookup func(string) (string, bool)) *Source {
	return &Source{lookup: lookup}
}

func (s *Source) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	value, ok := s.lookup(EnvVar)
	key := strings.TrimSpace(value)
	if !ok || key == "" {
		return "", domain.ErrMissingAPIKey
	}
	return key, nil
}
