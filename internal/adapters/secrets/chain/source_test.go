package chain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bnema/duty-agent/internal/adapters/secrets/envkey"
	"github.com/bnema/duty-agent/internal/adapters/secrets/stdinkey"
	"github.com/bnema/duty-agent/internal/domain"
	"github.com/bnema/duty-agent/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envSource(values map[string]string) ports.KeySource {
	return envkey.NewSourceFromLookup(func(name string) (string, bool) {
		value, ok := values[name]
		return value, ok
	})
}

func TestChainPrefersStdinOverEnv(t *testing.T) {
	t.Parallel()

	source, err := NewSource(
		stdinkey.NewSourceFromReader(strings.NewReader("sk-piped\n")),
		envSource(map[string]string{envkey.EnvVar: "sk-env"}),
	)
	require.NoError(t, err)

	key, err := source.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sk-piped", key)
}

func TestChainFallsThroughToEnv(t *testing.T) {
	t.Parallel()

	source, err := NewSource(
		stdinkey.NewSourceFromReader(strings.NewReader("")),
		envSource(map[string]string{envkey.EnvVar: " sk-env "}),
	)
	require.NoError(t, err)

	key, err := source.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sk-env", key)
}

func TestChainAllSourcesEmpty(t *testing.T) {
	t.Parallel()

	source, err := NewSource(
		stdinkey.NewSourceFromReader(strings.NewReader("\n")),
		envSource(nil),
	)
	require.NoError(t, err)

	_, err = source.Read(context.Background())
	require.ErrorIs(t, err, domain.ErrMissingAPIKey)
}

type failingSource struct{ err error }

func (f failingSource) Read(context.Context) (string, error) { return "", f.err }

func TestChainSurfacesHardFailures(t *testing.T) {
	t.Parallel()

	readErr := errors.New("read key from stdin: broken pipe")
	source, err := NewSource(
		failingSource{err: readErr},
		envSource(map[string]string{envkey.EnvVar: "sk-env"}),
	)
	require.NoError(t, err)

	_, err = source.Read(context.Background())
	require.ErrorIs(t, err, readErr)
}

func TestNewSourceRejectsEmptyChain(t *testing.T) {
	t.Parallel()

	_, err := NewSource()
	require.Error(t, err)
}
