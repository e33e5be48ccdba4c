package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/gitview/internal/buildinfo"
	"github.com/thiagokokada/gitview/internal/git"
	"github.com/thiagokokada/gitview/internal/render"
)

func newShowCmd(global *globalOptions) *cobra.Command {
	var (
		fields []string
		format string
	)
	cmd := &cobra.Command{
		Use:   "show REV",
		Short: "Show one commit",
		Long: "Show one commit. With --field, print only the named fields, one per line.\n" +
			"REV may be LAST for the root commit on HEAD's first-parent chain.",
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			wanted := make([]git.Field, 0, len(fields))
			for _, name := range fields {
				f, err := git.ParseField(name)
				if err != nil {
					return usageError(err)
				}
				wanted = append(wanted, f)
			}
			f, err := render.ParseFormat(format)
			if err != nil {
				return usageError(err)
			}
			ctx := cmd.Context()
			repo, err := global.open(ctx)
			if err != nil {
				return err
			}
			c := repo.Commit(args[0])
			if len(wanted) == 0 {
				return global.renderer(cmd, f).Commit(ctx, c)
			}
			out := cmd.OutOrStdout()
			for _, field := range wanted {
				v, err := c.Get(ctx, field)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, v)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&fields, "field", nil, fmt.Sprintf("print only this field (repeatable): %v", git.Fields))
	cmd.Flags().StringVar(&format, "format", string(render.FormatText), "output format: text, oneline, or yaml")
	return cmd
}

func newTagsCmd(global *globalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags ordered by committer date",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return usageError(err)
			}
			ctx := cmd.Context()
			repo, err := global.open(ctx)
			if err != nil {
				return err
			}
			tags, err := repo.Tags(ctx)
			if err != nil {
				return err
			}
			r := global.renderer(cmd, f)
			for _, tag := range tags {
				if err := r.Tag(ctx, tag); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(render.FormatText), "output format: text or yaml")
	return cmd
}

func newConfigCmd(global *globalOptions) *cobra.Command {
	var def string
	cmd := &cobra.Command{
		Use:   "config KEY",
		Short: "Print a git configuration value",
		Long:  "Print a git configuration value. A missing key exits 1 without output unless --default is set.",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, err := global.open(ctx)
			if err != nil {
				return err
			}
			var v string
			if cmd.Flags().Changed("default") {
				v, err = repo.Config().Get(ctx, args[0], def)
			} else {
				v, err = repo.Config().Lookup(ctx, args[0])
			}
			if errors.Is(err, git.ErrKeyNotFound) {
				return silentExit(ExitFailure)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
	cmd.Flags().StringVar(&def, "default", "", "value to print when KEY is not set")
	return cmd
}

func newInfoCmd(global *globalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Describe the repository",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return usageError(err)
			}
			ctx := cmd.Context()
			repo, err := global.open(ctx)
			if err != nil {
				return err
			}
			info := render.Info{Path: repo.Path(), GitVersion: repo.GitVersion()}
			if info.Bare, err = repo.Bare(ctx); err != nil {
				return err
			}
			if info.Toplevel, err = repo.Toplevel(ctx); err != nil {
				return err
			}
			if info.GitDir, err = repo.GitDir(ctx); err != nil {
				return err
			}
			return global.renderer(cmd, f).Info(info)
		},
	}
	cmd.Flags().StringVar(&format, "format", string(render.FormatText), "output format: text or yaml")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "gitview %s\n", buildinfo.String())
			v, err := git.GitVersion()
			if err != nil {
				fmt.Fprintf(out, "git: %v (need >= %s)\n", err, git.MinGitVersion())
				return nil
			}
			fmt.Fprintln(out, v)
			return nil
		},
	}
}
