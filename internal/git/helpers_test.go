package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	gitbackend "github.com/thiagokokada/gitview/internal/git/backend"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// testRepo builds a throwaway repository with the git binary. Commits get
// deterministic identities and dates.
type testRepo struct {
	t   *testing.T
	dir string
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	requireGit(t)
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	repo := &testRepo{t: t, dir: dir}
	repo.git(nil, "init", "-q")
	repo.git(nil, "symbolic-ref", "HEAD", "refs/heads/main")
	return repo
}

func newBareTestRepo(t *testing.T) *testRepo {
	t.Helper()
	requireGit(t)
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	repo := &testRepo{t: t, dir: dir}
	repo.git(nil, "init", "-q", "--bare")
	return repo
}

func (r *testRepo) git(env []string, args ...string) string {
	r.t.Helper()
	cmd := exec.Command("git", append([]string{"-C", r.dir}, args...)...)
	cmd.Env = append(os.Environ(),
		"GIT_CONFIG_GLOBAL="+os.DevNull,
		"GIT_CONFIG_NOSYSTEM=1",
		"GIT_AUTHOR_NAME=Ada Lovelace",
		"GIT_AUTHOR_EMAIL=ada@example.com",
		"GIT_COMMITTER_NAME=Charles Babbage",
		"GIT_COMMITTER_EMAIL=charles@example.com",
	)
	cmd.Env = append(cmd.Env, env...)
	out, err := cmd.CombinedOutput()
	require.NoError(r.t, err, "git %s: %s", strings.Join(args, " "), out)
	return strings.TrimSpace(string(out))
}

// commit records an empty commit at unix time ts and returns its hash.
func (r *testRepo) commit(ts int64, msg ...string) string {
	r.t.Helper()
	date := fmt.Sprintf("GIT_AUTHOR_DATE=@%d +0000", ts)
	cdate := fmt.Sprintf("GIT_COMMITTER_DATE=@%d +0000", ts)
	args := []string{"commit", "-q", "--allow-empty", "--no-gpg-sign"}
	for _, m := range msg {
		args = append(args, "-m", m)
	}
	r.git([]string{date, cdate}, args...)
	return r.git(nil, "rev-parse", "HEAD")
}

func (r *testRepo) open(opts ...Option) *Repository {
	r.t.Helper()
	repo, err := Open(context.Background(), r.dir, opts...)
	require.NoError(r.t, err)
	return repo
}

// countingRunner records every git invocation before delegating.
type countingRunner struct {
	inner gitbackend.Runner

	mu    sync.Mutex
	calls [][]string
}

func newCountingRunner(dir string) *countingRunner {
	return &countingRunner{inner: gitbackend.NewCLIRunner(dir)}
}

func (c *countingRunner) record(args []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, slices.Clone(args))
}

func (c *countingRunner) Run(ctx context.Context, args ...string) (string, error) {
	c.record(args)
	return c.inner.Run(ctx, args...)
}

func (c *countingRunner) Command(ctx context.Context, args ...string) *exec.Cmd {
	c.record(args)
	return c.inner.Command(ctx, args...)
}

// count returns how many recorded calls ran the git subcommand sub.
func (c *countingRunner) count(sub string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, call := range c.calls {
		if len(call) > 0 && call[0] == sub {
			n++
		}
	}
	return n
}

func (c *countingRunner) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func (c *countingRunner) last() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.calls) == 0 {
		return nil
	}
	return c.calls[len(c.calls)-1]
}

func (c *countingRunner) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}

// fakeRunner answers `git version` and hands everything else to run.
type fakeRunner struct {
	run     func(args ...string) (string, error)
	command func(ctx context.Context, args ...string) *exec.Cmd
}

func (f *fakeRunner) Run(_ context.Context, args ...string) (string, error) {
	if len(args) == 1 && args[0] == "version" {
		return "git version 2.47.0\n", nil
	}
	if f.run != nil {
		return f.run(args...)
	}
	return "", errors.New("unexpected Run call")
}

func (f *fakeRunner) Command(ctx context.Context, args ...string) *exec.Cmd {
	if f.command != nil {
		return f.command(ctx, args...)
	}
	return exec.CommandContext(ctx, "false")
}
