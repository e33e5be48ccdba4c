package render

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/thiagokokada/gitview/internal/git"
)

const testHash = "0123456789abcdef0123456789abcdef01234567"

// showRunner answers `git show` with a fixed commit.
type showRunner struct {
	body string
}

func (s showRunner) Run(_ context.Context, args ...string) (string, error) {
	switch args[0] {
	case "version":
		return "git version 2.47.0", nil
	case "show":
		return strings.Join([]string{
			testHash,
			"Fix the frobnicator",
			"Ada Lovelace",
			"Tue Nov 14 22:13:20 2023 +0000",
			"1700000000",
			"Charles Babbage",
			"1700000100",
			"Fix the frobnicator\n\n" + s.body,
			s.body,
		}, "\x00"), nil
	}
	return "", errors.New("unexpected git " + args[0])
}

func (showRunner) Command(ctx context.Context, _ ...string) *exec.Cmd {
	return exec.CommandContext(ctx, "false")
}

func testCommit(t *testing.T, body string) *git.Commit {
	t.Helper()
	repo, err := git.Open(context.Background(), t.TempDir(), git.WithRunner(showRunner{body: body}))
	require.NoError(t, err)
	return repo.Commit("v1.0.0")
}

func TestRenderer_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := New(&buf, Options{Format: FormatText, Color: ColorNever})
	c := testCommit(t, "Line one.\nLine two.")
	require.NoError(t, r.Commit(context.Background(), c))
	require.NoError(t, r.Commit(context.Background(), c))

	entry := "commit " + testHash + "\n" +
		"Author: Ada Lovelace\n" +
		"Date:   Tue Nov 14 22:13:20 2023 +0000\n" +
		"\n" +
		"    Fix the frobnicator\n" +
		"\n" +
		"    Line one.\n" +
		"    Line two.\n"
	assert.Equal(t, entry+"\n"+entry, buf.String())
}

func TestRenderer_Oneline(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := New(&buf, Options{Format: FormatOneline, Color: ColorNever})
	require.NoError(t, r.Commit(context.Background(), testCommit(t, "")))
	assert.Equal(t, "0123456789ab Fix the frobnicator\n", buf.String())
}

func TestRenderer_YAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := New(&buf, Options{Format: FormatYAML, Color: ColorNever})
	require.NoError(t, r.Commit(context.Background(), testCommit(t, "Body.")))
	require.True(t, strings.HasPrefix(buf.String(), "---\n"))

	var got CommitView
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, CommitView{
		Hash:               testHash,
		Subject:            "Fix the frobnicator",
		AuthorName:         "Ada Lovelace",
		AuthorDate:         "Tue Nov 14 22:13:20 2023 +0000",
		AuthorTimestamp:    1700000000,
		CommitterName:      "Charles Babbage",
		CommitterTimestamp: 1700000100,
		Date:               "2023-11-14",
		Body:               "Body.",
	}, got)
}

func TestRenderer_YAMLHighlighted(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := New(&buf, Options{Format: FormatYAML, Color: ColorAlways, Theme: ThemeDark})
	require.NoError(t, r.Commit(context.Background(), testCommit(t, "")))
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "Fix the frobnicator")
}

func TestRenderer_Tag(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := New(&buf, Options{Color: ColorNever})
	require.NoError(t, r.Tag(context.Background(), testCommit(t, "")))
	assert.Equal(t, "v1.0.0\t0123456789ab\t2023-11-14\n", buf.String())

	buf.Reset()
	r = New(&buf, Options{Format: FormatYAML, Color: ColorNever})
	require.NoError(t, r.Tag(context.Background(), testCommit(t, "")))
	assert.Contains(t, buf.String(), "tag: v1.0.0\n")
	assert.Contains(t, buf.String(), "hash: "+testHash+"\n")
}

func TestRenderer_Info(t *testing.T) {
	t.Parallel()

	info := Info{Path: "/srv/repo", Toplevel: "/srv/repo", GitDir: "/srv/repo/.git", GitVersion: "git version 2.47.0"}

	var buf bytes.Buffer
	require.NoError(t, New(&buf, Options{Color: ColorNever}).Info(info))
	assert.Contains(t, buf.String(), "git dir:  /srv/repo/.git\n")
	assert.Contains(t, buf.String(), "bare:     false\n")

	buf.Reset()
	require.NoError(t, New(&buf, Options{Format: FormatYAML, Color: ColorNever}).Info(info))
	var got Info
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, info, got)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]Format{"": FormatText, "TEXT": FormatText, "oneline": FormatOneline, " yaml ": FormatYAML} {
		got, err := ParseFormat(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	_, err := ParseFormat("json")
	assert.Error(t, err)
}

func TestParseModes(t *testing.T) {
	t.Parallel()

	theme, err := ParseThemePreference("Dark")
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)
	_, err = ParseThemePreference("sepia")
	assert.Error(t, err)

	color, err := ParseColorMode("never")
	require.NoError(t, err)
	assert.Equal(t, ColorNever, color)
	_, err = ParseColorMode("sometimes")
	assert.Error(t, err)
}

func TestColorMode_Enabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.True(t, ColorAlways.enabled(&buf))
	assert.False(t, ColorNever.enabled(&buf))
	assert.False(t, ColorAuto.enabled(&buf), "a buffer is not a terminal")
}

func TestStyleFor(t *testing.T) {
	orig := detectDarkMode
	t.Cleanup(func() { detectDarkMode = orig })

	detectDarkMode = func() (bool, error) { return true, nil }
	assert.Equal(t, "github-dark", styleFor(ThemeAuto).Name)
	assert.Equal(t, "github", styleFor(ThemeLight).Name)

	detectDarkMode = func() (bool, error) { return false, errors.New("no desktop") }
	assert.Equal(t, "github", styleFor(ThemeAuto).Name)
	assert.Equal(t, "github-dark", styleFor(ThemeDark).Name)
}
