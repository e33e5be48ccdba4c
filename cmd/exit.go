package cmd

import (
	"errors"
	"fmt"

	"github.com/thiagokokada/gitview/internal/git"
)

const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitUsage          = 2
	ExitNotRepository  = 3
	ExitCommitNotFound = 4
	ExitSetup          = 5
)

// ExitError carries an explicit process exit code. A silent ExitError
// produces no message; `config` uses it for a missing key.
type ExitError struct {
	code   int
	silent bool
	err    error
}

func (e *ExitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *ExitError) Unwrap() error { return e.err }

func (e *ExitError) ExitCode() int { return e.code }

func usageError(err error) error {
	return &ExitError{code: ExitUsage, err: err}
}

func usageErrorf(format string, args ...any) error {
	return usageError(fmt.Errorf(format, args...))
}

func silentExit(code int) error {
	return &ExitError{code: code, silent: true}
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	switch {
	case errors.Is(err, git.ErrNotRepository):
		return ExitNotRepository
	case errors.Is(err, git.ErrCommitNotFound):
		return ExitCommitNotFound
	case errors.Is(err, git.ErrGitUnavailable):
		return ExitSetup
	default:
		return ExitFailure
	}
}

// Silent reports whether err should exit without printing anything.
func Silent(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.silent
}
