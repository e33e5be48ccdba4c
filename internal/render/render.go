// Package render writes commits and repository facts for the terminal.
package render

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"gopkg.in/yaml.v3"

	"github.com/thiagokokada/gitview/internal/git"
)

type Format string

const (
	FormatText    Format = "text"
	FormatOneline Format = "oneline"
	FormatYAML    Format = "yaml"
)

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatOneline, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, oneline or yaml)", raw)
	}
}

const (
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

// CommitView is the serialized form of a commit.
type CommitView struct {
	Hash               string `yaml:"hash"`
	Subject            string `yaml:"subject"`
	AuthorName         string `yaml:"author_name"`
	AuthorDate         string `yaml:"author_date"`
	AuthorTimestamp    int64  `yaml:"author_date_timestamp"`
	CommitterName      string `yaml:"committer_name"`
	CommitterTimestamp int64  `yaml:"committer_date_timestamp"`
	Date               string `yaml:"date"`
	Body               string `yaml:"body,omitempty"`
}

// NewCommitView reads every field of c. A commit that came from a log stream
// is already complete; any other commit costs one query.
func NewCommitView(ctx context.Context, c *git.Commit) (CommitView, error) {
	var (
		v   CommitView
		err error
	)
	if v.Hash, err = c.Hash(ctx); err != nil {
		return v, err
	}
	if v.Subject, err = c.Subject(ctx); err != nil {
		return v, err
	}
	if v.AuthorName, err = c.AuthorName(ctx); err != nil {
		return v, err
	}
	if v.AuthorDate, err = c.AuthorDate(ctx); err != nil {
		return v, err
	}
	if v.AuthorTimestamp, err = c.AuthorTimestamp(ctx); err != nil {
		return v, err
	}
	if v.CommitterName, err = c.CommitterName(ctx); err != nil {
		return v, err
	}
	if v.CommitterTimestamp, err = c.CommitterTimestamp(ctx); err != nil {
		return v, err
	}
	if v.Date, err = c.Date(ctx); err != nil {
		return v, err
	}
	if v.Body, err = c.Body(ctx); err != nil {
		return v, err
	}
	return v, nil
}

// Info is the summary printed by `gitview info`.
type Info struct {
	Path       string `yaml:"path"`
	Toplevel   string `yaml:"toplevel"`
	GitDir     string `yaml:"git_dir"`
	Bare       bool   `yaml:"bare"`
	GitVersion string `yaml:"git_version"`
}

type Options struct {
	Format Format
	Color  ColorMode
	Theme  ThemePreference
}

type Renderer struct {
	w      io.Writer
	format Format
	style  *chroma.Style // nil when color is off
	count  int
}

func New(w io.Writer, opts Options) *Renderer {
	r := &Renderer{w: w, format: opts.Format}
	if r.format == "" {
		r.format = FormatText
	}
	if opts.Color.enabled(w) {
		r.style = styleFor(opts.Theme)
	}
	return r
}

func (r *Renderer) Commit(ctx context.Context, c *git.Commit) error {
	v, err := NewCommitView(ctx, c)
	if err != nil {
		return err
	}
	defer func() { r.count++ }()
	switch r.format {
	case FormatOneline:
		return r.oneline(v)
	case FormatYAML:
		return r.yamlDocument(v)
	default:
		return r.text(v)
	}
}

func (r *Renderer) oneline(v CommitView) error {
	_, err := fmt.Fprintf(r.w, "%s %s\n", r.paint(ShortHash(v.Hash)), v.Subject)
	return err
}

func (r *Renderer) text(v CommitView) error {
	var b strings.Builder
	if r.count > 0 {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%s\n", r.paint("commit "+v.Hash))
	fmt.Fprintf(&b, "Author: %s\n", v.AuthorName)
	fmt.Fprintf(&b, "Date:   %s\n", v.AuthorDate)
	b.WriteString("\n")
	fmt.Fprintf(&b, "    %s\n", v.Subject)
	if v.Body != "" {
		b.WriteString("\n")
		for line := range strings.Lines(v.Body) {
			fmt.Fprintf(&b, "    %s\n", strings.TrimRight(line, "\n"))
		}
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *Renderer) yamlDocument(v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return r.highlightYAML("---\n" + string(out))
}

// Tag writes one line per tag: name, short hash and date.
func (r *Renderer) Tag(ctx context.Context, c *git.Commit) error {
	if r.format == FormatYAML {
		v, err := NewCommitView(ctx, c)
		if err != nil {
			return err
		}
		return r.yamlDocument(struct {
			Tag        string `yaml:"tag"`
			CommitView `yaml:",inline"`
		}{Tag: c.Identifier(), CommitView: v})
	}
	hash, err := c.Hash(ctx)
	if err != nil {
		return err
	}
	date, err := c.Date(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(r.w, "%s\t%s\t%s\n", c.Identifier(), r.paint(ShortHash(hash)), date)
	return err
}

func (r *Renderer) Info(info Info) error {
	if r.format == FormatYAML {
		return r.yamlDocument(info)
	}
	tw := tabwriter.NewWriter(r.w, 0, 4, 1, ' ', 0)
	fmt.Fprintf(tw, "path:\t%s\n", info.Path)
	fmt.Fprintf(tw, "toplevel:\t%s\n", info.Toplevel)
	fmt.Fprintf(tw, "git dir:\t%s\n", info.GitDir)
	fmt.Fprintf(tw, "bare:\t%t\n", info.Bare)
	fmt.Fprintf(tw, "git:\t%s\n", info.GitVersion)
	return tw.Flush()
}

func (r *Renderer) highlightYAML(src string) error {
	if r.style == nil {
		_, err := io.WriteString(r.w, src)
		return err
	}
	lexer := lexers.Get("yaml")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, src)
	if err != nil {
		return fmt.Errorf("highlight: %w", err)
	}
	return formatters.Get("terminal256").Format(r.w, r.style, iterator)
}

func (r *Renderer) paint(s string) string {
	if r.style == nil {
		return s
	}
	return ansiYellow + s + ansiReset
}

// ShortHash abbreviates a hash to 12 characters.
func ShortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
