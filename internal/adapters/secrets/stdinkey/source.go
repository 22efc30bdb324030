// Package stdinkey reads the API key from a pipe on standard input. The
// key never lives in the settings file; the host pipes it in per run.
package stdinkey

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bnema/duty-agent/internal/domain"
	"github.com/bnema/duty-agent/internal/ports"
)

const maxKeyLineBytes = 4096

type Source struct {
	reader      io.Reader
	interactive bool
}

var _ ports.KeySource = (*Source)(nil)

// NewSource wraps standard input. An interactive terminal is never read:
// a human at a prompt is not a key pipe.
func NewSource() *Source {
	info, err := os.Stdin.Stat()
	interactive := err != nil || info.Mode()&os.ModeCharDevice != 0
	return &Source{reader: os.Stdin, interactive: interactive}
}

// NewSourceFromReader exists for callers that already hold the pipe.
func NewSourceFromReader(reader io.Reader) *Source {
	return &Source{reader: reader}
}

func (s *Source) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.interactive {
		return "", domain.ErrMissingAPIKey
	}

	scanner := bufio.NewScanner(s.reader)
	scanner.Buffer(make([]byte, 0, 256), maxKeyLineBytes)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("read key from stdin: %w", err)
		}
		return "", domain.ErrMissingAPIKey
	}

	key := strings.TrimSpace(scanner.Text())
	if key == "" {
		return "", domain.ErrMissingAPIKey
	}
	return key, nil
}
