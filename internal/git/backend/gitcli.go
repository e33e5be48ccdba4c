package backend

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// CLIRunner runs the git executable with `-C <dir>` prepended, so every
// command is anchored to dir regardless of the process working directory.
type CLIRunner struct {
	dir    string
	logger *slog.Logger
}

// NewCLIRunner returns a runner for dir. An empty dir runs git without -C.
func NewCLIRunner(dir string) *CLIRunner {
	return &CLIRunner{dir: dir, logger: slog.Default()}
}

// WithLogger returns a copy of the runner that logs to logger.
func (r *CLIRunner) WithLogger(logger *slog.Logger) *CLIRunner {
	if logger == nil {
		return r
	}
	cp := *r
	cp.logger = logger
	return &cp
}

func (r *CLIRunner) Dir() string {
	if r == nil {
		return ""
	}
	return r.dir
}

func (r *CLIRunner) Command(ctx context.Context, args ...string) *exec.Cmd {
	cmdArgs := make([]string, 0, len(args)+3)
	cmdArgs = append(cmdArgs, "--no-pager")
	if r.dir != "" {
		cmdArgs = append(cmdArgs, "-C", r.dir)
	}
	cmdArgs = append(cmdArgs, args...)
	cmd := exec.CommandContext(ctx, "git", cmdArgs...)
	// Never block on a credential prompt; this is a read-only tool.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	return cmd
}

func (r *CLIRunner) Run(ctx context.Context, args ...string) (string, error) {
	cmd := r.Command(ctx, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	start := time.Now()
	err := cmd.Run()
	r.logger.Debug("git command",
		slog.String("dir", r.dir),
		slog.Any("args", args),
		slog.Duration("elapsed", time.Since(start)),
		slog.Bool("ok", err == nil),
	)
	if err != nil {
		return "", newShellError(args, stdout.String(), stderr.String(), err)
	}
	return stdout.String(), nil
}
