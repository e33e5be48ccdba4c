package git

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// LastCommit is an identifier for the root commit reached by following first
// parents from HEAD.
const LastCommit = "LAST"

// Commit is a commit identified by anything git accepts as a revision. Fields
// are fetched from git on first access and cached for the lifetime of the
// value; a set field is never refetched.
//
// Commits are safe for concurrent use.
type Commit struct {
	repo *Repository
	id   string

	mu     sync.Mutex
	fields map[Field]string
}

func newCommit(repo *Repository, id string) *Commit {
	return &Commit{repo: repo, id: id, fields: make(map[Field]string, len(Fields))}
}

// Identifier returns the identifier the commit was created with. It never
// queries git.
func (c *Commit) Identifier() string {
	return c.id
}

func (c *Commit) String() string {
	return fmt.Sprintf("<Commit %q>", c.id)
}

// Known reports whether f is already cached.
func (c *Commit) Known(f Field) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.fields[f]
	return ok
}

// Get returns the value of f. If f is not cached yet, every field that is
// still missing is fetched with a single query.
func (c *Commit) Get(ctx context.Context, f Field) (string, error) {
	if _, ok := fieldFormats[f]; !ok {
		return "", &UnknownFieldError{Name: string(f)}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.fields[f]; ok {
		return v, nil
	}
	missing := make([]Field, 0, len(Fields))
	for _, field := range Fields {
		if _, ok := c.fields[field]; !ok {
			missing = append(missing, field)
		}
	}
	values, err := c.fetch(ctx, missing)
	if err != nil {
		return "", err
	}
	for i, field := range missing {
		c.fields[field] = values[i]
	}
	return c.fields[f], nil
}

func (c *Commit) fetch(ctx context.Context, fields []Field) ([]string, error) {
	id := c.id
	if id == LastCommit {
		last, err := c.repo.lastCommit(ctx)
		if err != nil {
			return nil, err
		}
		id = last
	}
	out, err := c.repo.runner.Run(ctx,
		"show", "-s", "--no-color", "--no-show-signature",
		"--pretty="+prettyFormat(fields),
		"--end-of-options", id+"^{commit}", "--",
	)
	if err != nil {
		return nil, c.repo.classifyCommitError(ctx, c.id, err)
	}
	values := strings.Split(out, "\x00")
	if len(values) != len(fields) {
		return nil, fmt.Errorf("%w: %s: got %d fields, want %d", ErrMalformedRecord, c, len(values), len(fields))
	}
	for i, v := range values {
		values[i] = strings.TrimSpace(strings.ToValidUTF8(v, "\uFFFD"))
	}
	c.repo.logger.Debug("commit fields fetched",
		slog.String("commit", c.id),
		slog.Int("fields", len(fields)),
	)
	return values, nil
}

func (c *Commit) Hash(ctx context.Context) (string, error) {
	return c.Get(ctx, FieldHash)
}

func (c *Commit) Subject(ctx context.Context) (string, error) {
	return c.Get(ctx, FieldSubject)
}

func (c *Commit) AuthorName(ctx context.Context) (string, error) {
	return c.Get(ctx, FieldAuthorName)
}

// AuthorDate is the author date in git's default date format.
func (c *Commit) AuthorDate(ctx context.Context) (string, error) {
	return c.Get(ctx, FieldAuthorDate)
}

func (c *Commit) AuthorTimestamp(ctx context.Context) (int64, error) {
	return c.timestamp(ctx, FieldAuthorTimestamp)
}

func (c *Commit) AuthorTime(ctx context.Context) (time.Time, error) {
	ts, err := c.AuthorTimestamp(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(ts, 0).UTC(), nil
}

func (c *Commit) CommitterName(ctx context.Context) (string, error) {
	return c.Get(ctx, FieldCommitterName)
}

func (c *Commit) CommitterTimestamp(ctx context.Context) (int64, error) {
	return c.timestamp(ctx, FieldCommitterTimestamp)
}

func (c *Commit) CommitterTime(ctx context.Context) (time.Time, error) {
	ts, err := c.CommitterTimestamp(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(ts, 0).UTC(), nil
}

// RawBody is the unwrapped subject and body.
func (c *Commit) RawBody(ctx context.Context) (string, error) {
	return c.Get(ctx, FieldRawBody)
}

// Body is the message without the subject line.
func (c *Commit) Body(ctx context.Context) (string, error) {
	return c.Get(ctx, FieldBody)
}

// Date is the author date as a UTC calendar date, YYYY-MM-DD.
func (c *Commit) Date(ctx context.Context) (string, error) {
	t, err := c.AuthorTime(ctx)
	if err != nil {
		return "", err
	}
	return t.Format(time.DateOnly), nil
}

func (c *Commit) timestamp(ctx context.Context, f Field) (int64, error) {
	v, err := c.Get(ctx, f)
	if err != nil {
		return 0, err
	}
	ts, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: parse %s %q: %w", c, f, v, err)
	}
	return ts, nil
}

// Key returns the resolved hash, suitable as a map key.
func (c *Commit) Key(ctx context.Context) (string, error) {
	return c.Hash(ctx)
}

// Equal reports whether both commits resolve to the same hash.
func (c *Commit) Equal(ctx context.Context, other *Commit) (bool, error) {
	if other == nil {
		return false, nil
	}
	if c == other {
		return true, nil
	}
	a, err := c.Hash(ctx)
	if err != nil {
		return false, err
	}
	b, err := other.Hash(ctx)
	if err != nil {
		return false, err
	}
	return a == b, nil
}
