package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/gitview/internal/git"
	"github.com/thiagokokada/gitview/internal/render"
	"github.com/thiagokokada/gitview/internal/watch"
)

type logOptions struct {
	excludes []string
	noMerges bool
	maxCount int
	format   string
	watch    bool
}

func newLogCmd(global *globalOptions) *cobra.Command {
	opts := &logOptions{}
	cmd := &cobra.Command{
		Use:   "log [REV...]",
		Short: "Stream commits reachable from REV (default HEAD)",
		Long: "Stream commits reachable from the given revisions, minus those reachable\n" +
			"from any --exclude revision, in git's topological order.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(cmd, global, opts, args)
		},
	}
	flags := cmd.Flags()
	flags.StringArrayVar(&opts.excludes, "exclude", nil, "hide commits reachable from this revision (repeatable)")
	flags.BoolVar(&opts.noMerges, "no-merges", false, "skip merge commits")
	flags.IntVarP(&opts.maxCount, "max-count", "n", 0, "stop after N commits (0 means no limit)")
	flags.StringVar(&opts.format, "format", string(render.FormatText), "output format: text, oneline, or yaml")
	flags.BoolVar(&opts.watch, "watch", false, "print the log again whenever refs change")
	return cmd
}

func runLog(cmd *cobra.Command, global *globalOptions, opts *logOptions, args []string) error {
	if opts.maxCount < 0 {
		return usageErrorf("--max-count must not be negative")
	}
	format, err := render.ParseFormat(opts.format)
	if err != nil {
		return usageError(err)
	}
	ctx := cmd.Context()
	repo, err := global.open(ctx)
	if err != nil {
		return err
	}

	logOpts := git.LogOptions{NoMerges: opts.noMerges}
	for _, rev := range args {
		logOpts.Includes = append(logOpts.Includes, git.Ident(rev))
	}
	for _, rev := range opts.excludes {
		logOpts.Excludes = append(logOpts.Excludes, git.Ident(rev))
	}

	r := global.renderer(cmd, format)
	if !opts.watch {
		return printLog(ctx, repo, r, logOpts, opts.maxCount)
	}
	return watchLog(ctx, repo, r, logOpts, opts.maxCount)
}

func printLog(ctx context.Context, repo *git.Repository, r *render.Renderer, opts git.LogOptions, limit int) error {
	n := 0
	for c, err := range repo.Commits(ctx, opts) {
		if err != nil {
			return err
		}
		if err := r.Commit(ctx, c); err != nil {
			return err
		}
		n++
		if limit > 0 && n >= limit {
			break
		}
	}
	slog.Debug("log printed", slog.Int("commits", n))
	return nil
}

// watchLog prints the log, then prints it again after every settled change
// to the repository refs, until ctx is canceled.
func watchLog(ctx context.Context, repo *git.Repository, r *render.Renderer, opts git.LogOptions, limit int) error {
	gitDir, err := repo.GitDir(ctx)
	if err != nil {
		return err
	}
	w, err := watch.New(gitDir, watch.DefaultDelay, slog.Default())
	if err != nil {
		return err
	}
	defer w.Close()

	for {
		if err := printLog(ctx, repo, r, opts, limit); err != nil {
			if isCanceled(err) {
				return nil
			}
			// A ref may vanish mid-rewrite; keep watching.
			slog.Error("log failed", slog.Any("error", err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-w.Changes():
			slog.Info("repository changed, reloading")
		}
	}
}
