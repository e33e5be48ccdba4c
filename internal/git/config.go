package git

import (
	"context"
	"errors"
	"strings"

	gitbackend "github.com/thiagokokada/gitview/internal/git/backend"
)

// Config reads git configuration as seen from the repository path.
type Config struct {
	repo *Repository
}

// Lookup returns the value of key, trimmed of surrounding whitespace. A key
// that is not set yields a *KeyNotFoundError.
func (c *Config) Lookup(ctx context.Context, key string) (string, error) {
	out, err := c.repo.runner.Run(ctx, "config", key)
	if err != nil {
		// git config signals a missing key with a silent exit 1.
		var shellErr *gitbackend.ShellError
		if errors.As(err, &shellErr) && shellErr.ExitCode == 1 && shellErr.Stdout == "" && shellErr.Stderr == "" {
			return "", &KeyNotFoundError{Key: key}
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Get is Lookup with def returned for a missing key.
func (c *Config) Get(ctx context.Context, key, def string) (string, error) {
	v, err := c.Lookup(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return def, nil
	}
	return v, err
}
