package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/thiagokokada/gitview/internal/git"
	"github.com/thiagokokada/gitview/internal/render"
)

const (
	envRepo    = "GITVIEW_REPO"
	envMode    = "GITVIEW_MODE"
	envVerbose = "GITVIEW_VERBOSE"
)

// Run executes the CLI with the process arguments. SIGINT and SIGTERM cancel
// the command context, which stops any running git process.
func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

type globalOptions struct {
	repo    string
	verbose bool
	logFile string
	mode    string
	color   string

	theme     render.ThemePreference
	colorMode render.ColorMode
	logCloser io.Closer
}

func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "gitview",
		Short:         "Read-only view of a git repository",
		Long:          "gitview streams commits, tags and configuration out of a git repository without modifying it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return opts.close()
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.repo, "repo", "C", "", "repository path (default: current directory, $"+envRepo+")")
	flags.BoolVar(&opts.verbose, "verbose", false, "enable debug logging ($"+envVerbose+")")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to a rotated file instead of stderr")
	flags.StringVar(&opts.mode, "mode", render.ThemeAuto.String(), "color theme: auto, light, or dark ($"+envMode+")")
	flags.StringVar(&opts.color, "color", render.ColorAuto.String(), "colorize output: auto, always, or never")

	root.AddCommand(
		newLogCmd(opts),
		newShowCmd(opts),
		newTagsCmd(opts),
		newConfigCmd(opts),
		newInfoCmd(opts),
		newVersionCmd(),
	)
	return root
}

func (o *globalOptions) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if !flags.Changed("repo") {
		if v := os.Getenv(envRepo); v != "" {
			o.repo = v
		}
	}
	if !flags.Changed("mode") {
		if v := os.Getenv(envMode); v != "" {
			o.mode = v
		}
	}
	if !flags.Changed("verbose") {
		if v := os.Getenv(envVerbose); v != "" {
			verbose, err := strconv.ParseBool(v)
			if err != nil {
				return usageErrorf("invalid $%s: %w", envVerbose, err)
			}
			o.verbose = verbose
		}
	}

	var err error
	if o.theme, err = render.ParseThemePreference(o.mode); err != nil {
		return usageError(err)
	}
	if o.colorMode, err = render.ParseColorMode(o.color); err != nil {
		return usageError(err)
	}
	o.setupLogging(cmd.ErrOrStderr())
	return nil
}

func (o *globalOptions) setupLogging(stderr io.Writer) {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	out := stderr
	if o.logFile != "" {
		lj := &lumberjack.Logger{
			Filename:   o.logFile,
			MaxSize:    5, // megabytes
			MaxBackups: 3,
			MaxAge:     30, // days
		}
		o.logCloser = lj
		out = lj
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
}

func (o *globalOptions) close() error {
	if o.logCloser == nil {
		return nil
	}
	err := o.logCloser.Close()
	o.logCloser = nil
	return err
}

func (o *globalOptions) open(ctx context.Context) (*git.Repository, error) {
	return git.Open(ctx, o.repo, git.WithLogger(slog.Default()))
}

func (o *globalOptions) renderer(cmd *cobra.Command, format render.Format) *render.Renderer {
	return render.New(cmd.OutOrStdout(), render.Options{
		Format: format,
		Color:  o.colorMode,
		Theme:  o.theme,
	})
}

// usageArgs turns positional-argument validation failures into usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
