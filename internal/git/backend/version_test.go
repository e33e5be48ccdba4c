package backend

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
)

func TestParseGitVersionOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want gitVersion
		ok   bool
	}{
		{name: "empty", in: "", ok: false},
		{name: "plain", in: "git version 2.47.1\n", want: gitVersion{major: 2, minor: 47, patch: 1}, ok: true},
		{name: "apple_git", in: "git version 2.39.5 (Apple Git-154)\n", want: gitVersion{major: 2, minor: 39, patch: 5}, ok: true},
		{name: "windows_suffix", in: "git version 2.45.2.windows.1\n", want: gitVersion{major: 2, minor: 45, patch: 2}, ok: true},
		{name: "no_prefix", in: "2.24.0\n", want: gitVersion{major: 2, minor: 24, patch: 0}, ok: true},
		{name: "no_patch", in: "git version 2.30\n", want: gitVersion{major: 2, minor: 30, patch: 0}, ok: true},
		{name: "rc_suffix", in: "git version 2.48.0-rc1\n", want: gitVersion{major: 2, minor: 48, patch: 0}, ok: true},
		{name: "major_only", in: "git version 3\n", ok: false},
		{name: "invalid", in: "git version not-a-version\n", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := parseGitVersionOutput(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v (got=%+v)", ok, tt.ok, got)
			}
			if !ok {
				return
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestValidateGitVersionOutput(t *testing.T) {
	t.Parallel()

	if got := MinGitVersion(); got != "2.24.0" {
		t.Fatalf("MinGitVersion() = %q", got)
	}
	if err := validateGitVersionOutput("git version 2.24.0\n"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := validateGitVersionOutput("git version 2.23.4\n"); err == nil {
		t.Fatal("expected error for old git")
	}
	if err := validateGitVersionOutput("garbage"); err == nil {
		t.Fatal("expected error for unparsable output")
	}
}

type fakeRunner struct {
	run func(args ...string) (string, error)
}

func (f fakeRunner) Run(_ context.Context, args ...string) (string, error) {
	return f.run(args...)
}

func (f fakeRunner) Command(ctx context.Context, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, "false")
}

func TestProbeVersion(t *testing.T) {
	t.Parallel()

	var gotArgs []string
	out, err := ProbeVersion(context.Background(), fakeRunner{run: func(args ...string) (string, error) {
		gotArgs = args
		return "git version 2.46.0\n", nil
	}})
	if err != nil {
		t.Fatalf("ProbeVersion: %v", err)
	}
	if out != "git version 2.46.0" {
		t.Fatalf("out = %q", out)
	}
	if strings.Join(gotArgs, " ") != "version" {
		t.Fatalf("args = %v", gotArgs)
	}

	_, err = ProbeVersion(context.Background(), fakeRunner{run: func(...string) (string, error) {
		return "git version 2.20.1\n", nil
	}})
	if err == nil || !strings.Contains(err.Error(), "too old") {
		t.Fatalf("expected too-old error, got %v", err)
	}

	boom := errors.New("exec: \"git\": executable file not found in $PATH")
	_, err = ProbeVersion(context.Background(), fakeRunner{run: func(...string) (string, error) {
		return "", boom
	}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected runner error, got %v", err)
	}
}
