package git

import (
	"errors"
	"fmt"

	gitbackend "github.com/thiagokokada/gitview/internal/git/backend"
)

var (
	ErrGitUnavailable = errors.New("git is unavailable")
	ErrNotRepository  = errors.New("not a git repository")
	ErrCommitNotFound = errors.New("commit not found")
	ErrKeyNotFound    = errors.New("config key not found")
	ErrUnknownField   = errors.New("unknown commit field")

	ErrStreamInterrupted = gitbackend.ErrStreamInterrupted
	ErrMalformedRecord   = gitbackend.ErrMalformedRecord
	ErrStreamClosed      = gitbackend.ErrStreamClosed
)

type (
	ShellError  = gitbackend.ShellError
	StreamError = gitbackend.StreamError
)

// SetupError means git itself could not be used: missing binary, unparsable
// version output or a version that is too old.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("%v: %v", ErrGitUnavailable, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

func (e *SetupError) Is(target error) bool { return target == ErrGitUnavailable }

// NotRepositoryError is returned by operations that need a repository when
// the handle path is not inside one.
type NotRepositoryError struct {
	Path string
	Err  error
}

func (e *NotRepositoryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, ErrNotRepository)
}

func (e *NotRepositoryError) Unwrap() error { return e.Err }

func (e *NotRepositoryError) Is(target error) bool { return target == ErrNotRepository }

// CommitNotFoundError wraps the failed metadata query for an identifier that
// git could not resolve to a commit.
type CommitNotFoundError struct {
	Identifier string
	Err        error
}

func (e *CommitNotFoundError) Error() string {
	return fmt.Sprintf("%v: %q", ErrCommitNotFound, e.Identifier)
}

func (e *CommitNotFoundError) Unwrap() error { return e.Err }

func (e *CommitNotFoundError) Is(target error) bool { return target == ErrCommitNotFound }

type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("%v: %s", ErrKeyNotFound, e.Key)
}

func (e *KeyNotFoundError) Is(target error) bool { return target == ErrKeyNotFound }

type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnknownField, e.Name)
}

func (e *UnknownFieldError) Is(target error) bool { return target == ErrUnknownField }
