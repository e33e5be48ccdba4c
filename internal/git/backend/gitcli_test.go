package backend

import (
	"context"
	"errors"
	"os/exec"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIRunner_Command(t *testing.T) {
	t.Parallel()

	cmd := NewCLIRunner("/srv/repo").Command(context.Background(), "remote")
	assert.Equal(t, []string{"git", "--no-pager", "-C", "/srv/repo", "remote"}, cmd.Args)
	assert.True(t, slices.Contains(cmd.Env, "GIT_TERMINAL_PROMPT=0"))

	cmd = NewCLIRunner("").Command(context.Background(), "version")
	assert.Equal(t, []string{"git", "--no-pager", "version"}, cmd.Args)
}

func TestCLIRunner_RunFailure(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", dir)
	_, err := NewCLIRunner(dir).Run(context.Background(), "rev-parse", "--show-toplevel")
	require.Error(t, err)

	var shellErr *ShellError
	require.True(t, errors.As(err, &shellErr))
	assert.Equal(t, []string{"rev-parse", "--show-toplevel"}, shellErr.Args)
	assert.Equal(t, 128, shellErr.ExitCode)
	assert.Contains(t, shellErr.Stderr, "not a git repository")
	assert.Contains(t, err.Error(), "git rev-parse --show-toplevel")
}

func TestShellError(t *testing.T) {
	t.Parallel()

	base := errors.New("exit status 1")
	err := newShellError([]string{"config", "--get", "x.y"}, "", "  \n", base)
	assert.Equal(t, -1, err.ExitCode)
	assert.Equal(t, "git config --get x.y: exit status 1", err.Error())
	assert.ErrorIs(t, err, base)
}

func TestStreamError(t *testing.T) {
	t.Parallel()

	err := &StreamError{Args: []string{"log", "--stdin"}, ExitCode: 128, Stderr: "fatal: bad object\n"}
	assert.ErrorIs(t, err, ErrStreamInterrupted)
	assert.Equal(t, "git log --stdin: git exited before input was fully consumed (exit 128): fatal: bad object", err.Error())
}

func TestStreamState_String(t *testing.T) {
	t.Parallel()

	for state, want := range map[StreamState]string{
		StateWritingRefs: "writing-refs",
		StateDraining:    "draining",
		StateDone:        "done",
		StateFailed:      "failed",
		StreamState(42):  "unknown",
	} {
		assert.Equal(t, want, state.String())
	}
}
