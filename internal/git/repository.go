package git

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	gitbackend "github.com/thiagokokada/gitview/internal/git/backend"
)

// TagSortFunc orders the tag list in place.
type TagSortFunc func(ctx context.Context, tags []*Commit) error

// Repository is a read-only handle on the repository at a fixed path. Every
// git command runs against that path regardless of the process working
// directory.
type Repository struct {
	path       string
	runner     gitbackend.Runner
	logger     *slog.Logger
	tagSort    TagSortFunc
	gitVersion string
	config     *Config

	toplevel lazy[string]
	bare     lazy[bool]
	gitDir   lazy[string]
	tags     lazy[[]*Commit]
}

type Option func(*Repository)

// WithRunner replaces the git executable with r.
func WithRunner(r gitbackend.Runner) Option {
	return func(repo *Repository) { repo.runner = r }
}

// WithTagSort overrides the order of Tags. The default is
// SortTagsByCommitterTime.
func WithTagSort(fn TagSortFunc) Option {
	return func(repo *Repository) { repo.tagSort = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(repo *Repository) {
		if logger != nil {
			repo.logger = logger
		}
	}
}

// Open returns a handle for path, or the current directory if path is empty.
// A directory that is not inside a repository still opens; operations that
// need one fail with ErrNotRepository.
func Open(ctx context.Context, path string, opts ...Option) (*Repository, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("open repository: %w", err)
		}
		path = wd
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	fi, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("open repository: %s is not a directory", resolved)
	}

	r := &Repository{
		path:    resolved,
		logger:  slog.Default(),
		tagSort: SortTagsByCommitterTime,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.runner == nil {
		r.runner = gitbackend.NewCLIRunner(resolved).WithLogger(r.logger)
	}
	version, err := gitbackend.ProbeVersion(ctx, r.runner)
	if err != nil {
		return nil, &SetupError{Err: err}
	}
	r.gitVersion = version
	r.config = &Config{repo: r}
	r.logger.Debug("repository opened", slog.String("path", resolved), slog.String("git", version))
	return r, nil
}

// Path is the absolute, symlink-free path the handle was opened with.
func (r *Repository) Path() string {
	return r.path
}

// GitVersion is the `git version` line probed by Open.
func (r *Repository) GitVersion() string {
	return r.gitVersion
}

func (r *Repository) Config() *Config {
	return r.config
}

// Commit returns a commit for identifier without validating it. Whether it
// exists is checked on first field access.
func (r *Repository) Commit(identifier string) *Commit {
	return newCommit(r, identifier)
}

// guard fails with a *NotRepositoryError when the handle path is not inside
// a repository.
func (r *Repository) guard(ctx context.Context) error {
	if _, err := r.runner.Run(ctx, "remote"); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &NotRepositoryError{Path: r.path, Err: err}
	}
	return nil
}

func (r *Repository) classifyCommitError(ctx context.Context, id string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if guardErr := r.guard(ctx); guardErr != nil {
		return guardErr
	}
	return &CommitNotFoundError{Identifier: id, Err: err}
}

func (r *Repository) lastCommit(ctx context.Context) (string, error) {
	out, err := r.runner.Run(ctx, "rev-list", "--first-parent", "--max-parents=0", "HEAD")
	if err != nil {
		return "", r.classifyCommitError(ctx, LastCommit, err)
	}
	first, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	if first == "" {
		return "", &CommitNotFoundError{Identifier: LastCommit, Err: fmt.Errorf("no root commit reachable from HEAD")}
	}
	return first, nil
}

// Toplevel returns the root of the working tree, or "" for a bare repository.
func (r *Repository) Toplevel(ctx context.Context) (string, error) {
	return r.toplevel.Get(func() (string, error) {
		bare, err := r.Bare(ctx)
		if err != nil {
			return "", err
		}
		if bare {
			return "", nil
		}
		out, err := r.runner.Run(ctx, "rev-parse", "--show-toplevel")
		if err != nil {
			return "", fmt.Errorf("resolve toplevel: %w", err)
		}
		return strings.TrimSpace(out), nil
	})
}

func (r *Repository) Bare(ctx context.Context) (bool, error) {
	return r.bare.Get(func() (bool, error) {
		if err := r.guard(ctx); err != nil {
			return false, err
		}
		out, err := r.runner.Run(ctx, "rev-parse", "--is-bare-repository")
		if err != nil {
			return false, fmt.Errorf("resolve bare: %w", err)
		}
		return strings.TrimSpace(out) == "true", nil
	})
}

// GitDir returns the absolute path of the git directory.
func (r *Repository) GitDir(ctx context.Context) (string, error) {
	return r.gitDir.Get(func() (string, error) {
		if err := r.guard(ctx); err != nil {
			return "", err
		}
		out, err := r.runner.Run(ctx, "rev-parse", "--git-dir")
		if err != nil {
			return "", fmt.Errorf("resolve git dir: %w", err)
		}
		dir := strings.TrimSpace(out)
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(r.path, dir)
		}
		return filepath.Clean(dir), nil
	})
}

// Tags returns one commit per tag, ordered by the tag sort. The list is
// computed once per handle; callers get their own copy of the slice.
func (r *Repository) Tags(ctx context.Context) ([]*Commit, error) {
	tags, err := r.tags.Get(func() ([]*Commit, error) {
		if err := r.guard(ctx); err != nil {
			return nil, err
		}
		out, err := r.runner.Run(ctx, "tag", "-l")
		if err != nil {
			return nil, fmt.Errorf("list tags: %w", err)
		}
		tags := []*Commit{}
		for line := range strings.Lines(out) {
			name := strings.TrimSpace(line)
			if name == "" {
				continue
			}
			tags = append(tags, r.Commit(name))
		}
		if r.tagSort != nil {
			if err := r.tagSort(ctx, tags); err != nil {
				return nil, fmt.Errorf("sort tags: %w", err)
			}
		}
		r.logger.Debug("tags listed", slog.Int("count", len(tags)))
		return tags, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(tags), nil
}

// SortTagsByCommitterTime orders tags by ascending committer timestamp,
// keeping the `git tag -l` order for ties.
func SortTagsByCommitterTime(ctx context.Context, tags []*Commit) error {
	stamps := make(map[*Commit]int64, len(tags))
	for _, tag := range tags {
		ts, err := tag.CommitterTimestamp(ctx)
		if err != nil {
			return err
		}
		stamps[tag] = ts
	}
	slices.SortStableFunc(tags, func(a, b *Commit) int {
		return cmp.Compare(stamps[a], stamps[b])
	})
	return nil
}
