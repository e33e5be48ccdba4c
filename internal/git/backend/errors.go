package backend

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrStreamInterrupted reports that git exited before it consumed all of
	// the refs written to its stdin.
	ErrStreamInterrupted = errors.New("git exited before input was fully consumed")

	// ErrMalformedRecord reports output that does not split into the expected
	// number of fields.
	ErrMalformedRecord = errors.New("malformed git record")
)

// ShellError is a git command that could not be run or exited non-zero.
type ShellError struct {
	Args     []string
	Stdout   string
	Stderr   string
	ExitCode int // -1 when the process never ran or was killed by a signal
	Err      error
}

func (e *ShellError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *ShellError) Unwrap() error {
	return e.Err
}

func newShellError(args []string, stdout, stderr string, err error) *ShellError {
	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return &ShellError{
		Args:     args,
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: code,
		Err:      err,
	}
}

// StreamError is returned by RecordStream when git terminated while refs were
// still being written. Stdout holds the output that had not been consumed
// yet; Stderr holds everything git wrote to stderr.
type StreamError struct {
	Args     []string
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error // the failed stdin write
}

func (e *StreamError) Error() string {
	msg := fmt.Sprintf("git %s: %v (exit %d)", strings.Join(e.Args, " "), ErrStreamInterrupted, e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

func (e *StreamError) Is(target error) bool {
	return target == ErrStreamInterrupted
}
