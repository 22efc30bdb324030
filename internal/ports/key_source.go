package ports

import "context"

// KeySource yields the model API key. The settings file is deliberately not
// a source: keys reach the process only through the host pipe or the
// environment.
type KeySource interface {
	Read(ctx context.Context) (string, error)
}
