package git

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"

	gitbackend "github.com/thiagokokada/gitview/internal/git/backend"
)

// Revision is a commit reference accepted by Log: a *Commit or an Ident.
type Revision interface {
	revision()
}

// Ident is a revision given by name: a hash, branch, tag or any other
// identifier git accepts.
type Ident string

func (Ident) revision()   {}
func (*Commit) revision() {}

type LogOptions struct {
	// Includes are the starting points. Empty means HEAD.
	Includes []Revision
	// Excludes hide every commit reachable from them.
	Excludes []Revision
	NoMerges bool
}

// Log starts one `git log --stdin` process for opts and returns an iterator
// over its commits in git's topological order. Every revision is resolved to
// a hash before the process starts, so an unknown revision fails here with
// ErrCommitNotFound. The caller must Close the iterator.
func (r *Repository) Log(ctx context.Context, opts LogOptions) (*CommitIter, error) {
	if err := r.guard(ctx); err != nil {
		return nil, err
	}
	includes := opts.Includes
	if len(includes) == 0 {
		includes = []Revision{Ident("HEAD")}
	}
	input := make([]string, 0, len(includes)+len(opts.Excludes))
	for _, rev := range includes {
		hash, err := r.resolveRevision(ctx, rev)
		if err != nil {
			return nil, err
		}
		input = append(input, hash)
	}
	for _, rev := range opts.Excludes {
		hash, err := r.resolveRevision(ctx, rev)
		if err != nil {
			return nil, err
		}
		input = append(input, "^"+hash)
	}

	args := []string{
		"log", "--stdin", "-z", "--topo-order", "--no-color", "--no-show-signature",
		"--pretty=" + prettyFormat(Fields),
	}
	if opts.NoMerges {
		args = append(args, "--no-merges")
	}
	args = append(args, "--")
	stream, err := gitbackend.StartRecordStream(ctx, r.runner, args, input, len(Fields), r.logger)
	if err != nil {
		return nil, err
	}
	return &CommitIter{repo: r, stream: stream}, nil
}

// Commits is Log as a range-over-func sequence. The process is closed on
// every exit path, including an early break. A failure is yielded once as
// the last element.
func (r *Repository) Commits(ctx context.Context, opts LogOptions) iter.Seq2[*Commit, error] {
	return func(yield func(*Commit, error) bool) {
		it, err := r.Log(ctx, opts)
		if err != nil {
			yield(nil, err)
			return
		}
		defer it.Close()
		for {
			c, err := it.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(c, nil) {
				return
			}
		}
	}
}

func (r *Repository) resolveRevision(ctx context.Context, rev Revision) (string, error) {
	switch v := rev.(type) {
	case *Commit:
		if v == nil {
			return "", errors.New("nil commit revision")
		}
		return v.Hash(ctx)
	case Ident:
		return r.Commit(string(v)).Hash(ctx)
	default:
		return "", fmt.Errorf("unsupported revision %T", rev)
	}
}

// CommitIter yields the commits of one log process. Each commit has every
// field set, so reading it never queries git. Next and Close must not be
// called concurrently.
type CommitIter struct {
	repo   *Repository
	stream *gitbackend.RecordStream
	err    error
}

// Next returns the next commit, or io.EOF after the last one.
func (it *CommitIter) Next() (*Commit, error) {
	if it.err != nil {
		return nil, it.err
	}
	rec, err := it.stream.Next()
	if err != nil {
		return nil, err
	}
	c, err := it.repo.commitFromRecord(rec)
	if err != nil {
		it.err = err
		_ = it.stream.Close()
		return nil, err
	}
	return c, nil
}

// ForEach calls fn for each commit and closes the iterator. Returning
// storer.ErrStop from fn stops the iteration without an error.
func (it *CommitIter) ForEach(fn func(*Commit) error) error {
	defer it.Close()
	for {
		c, err := it.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			if errors.Is(err, storer.ErrStop) {
				return nil
			}
			return err
		}
	}
}

func (it *CommitIter) State() gitbackend.StreamState {
	return it.stream.State()
}

// Close stops and reaps the log process. It is safe to call more than once.
func (it *CommitIter) Close() error {
	return it.stream.Close()
}

func (r *Repository) commitFromRecord(rec []string) (*Commit, error) {
	hash := strings.TrimSpace(rec[0])
	if !isObjectID(hash) {
		return nil, fmt.Errorf("%w: %q is not an object id", ErrMalformedRecord, hash)
	}
	c := newCommit(r, hash)
	for i, f := range Fields {
		c.fields[f] = strings.TrimSpace(rec[i])
	}
	return c, nil
}

// isObjectID accepts SHA-1 and SHA-256 object names.
func isObjectID(s string) bool {
	if plumbing.IsHash(s) {
		return true
	}
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
