// Package backend drives the git executable for the read-only object model in
// package git.
//
// One-shot commands go through a Runner. Long-lived `git log --stdin`
// processes go through RecordStream, which feeds refs on stdin while the
// caller drains NUL-framed records from stdout.
package backend

import (
	"context"
	"os/exec"
)

// Runner executes git commands against one repository directory.
//
// Run returns the captured stdout of a successful command and a *ShellError
// on non-zero exit. Command returns an unstarted *exec.Cmd targeting the same
// directory, so the caller gets full control over stdin/stdout/stderr.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
	Command(ctx context.Context, args ...string) *exec.Cmd
}
