package backend

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrStreamClosed is returned by Next after Close.
var ErrStreamClosed = errors.New("record stream closed")

// RecordStream runs one git process that reads refs from stdin and writes
// fixed-arity NUL-separated records to stdout.
//
// Refs are written by a dedicated goroutine while the caller reads, so a full
// stdout pipe can never block the writer into a deadlock. Next and Close must
// be called from a single goroutine.
type RecordStream struct {
	ctx    context.Context
	cancel context.CancelFunc
	args   []string
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer
	r      *bufio.Reader
	arity  int
	logger *slog.Logger

	state atomic.Int32

	writeDone chan struct{}
	writeErr  error

	waitOnce sync.Once
	waitErr  error

	// err is the sticky terminal result: io.EOF after a clean end.
	err    error
	closed bool
}

// StartRecordStream starts `git <args>` through r and begins writing input,
// one line per element, to its stdin.
func StartRecordStream(ctx context.Context, r Runner, args []string, input []string, arity int, logger *slog.Logger) (*RecordStream, error) {
	if arity <= 0 {
		return nil, fmt.Errorf("record arity must be positive, got %d", arity)
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	cmd := r.Command(ctx, args...)
	s := &RecordStream{
		ctx:       ctx,
		cancel:    cancel,
		args:      args,
		cmd:       cmd,
		arity:     arity,
		logger:    logger,
		writeDone: make(chan struct{}),
	}
	cmd.Stderr = &s.stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("git log stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		_ = stdin.Close()
		return nil, fmt.Errorf("git log stdout: %w", err)
	}
	s.stdout = stdout
	s.r = bufio.NewReader(stdout)
	if err := cmd.Start(); err != nil {
		cancel()
		_ = stdin.Close()
		_ = stdout.Close()
		return nil, newShellError(args, "", s.stderr.String(), err)
	}
	logger.Debug("git log stream started",
		slog.Any("args", args),
		slog.Int("refs", len(input)),
	)
	go s.writeInput(stdin, input)
	return s, nil
}

// State reports where the stream is in its lifecycle.
func (s *RecordStream) State() StreamState {
	return StreamState(s.state.Load())
}

func (s *RecordStream) writeInput(w io.WriteCloser, lines []string) {
	defer close(s.writeDone)
	bw := bufio.NewWriter(w)
	var err error
	for _, line := range lines {
		if _, err = bw.WriteString(line); err != nil {
			break
		}
		if err = bw.WriteByte('\n'); err != nil {
			break
		}
	}
	if err == nil {
		err = bw.Flush()
	}
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	s.writeErr = err
	if err != nil {
		s.logger.Debug("git log stdin write failed", slog.Any("error", err))
		return
	}
	if s.state.CompareAndSwap(int32(StateWritingRefs), int32(StateDraining)) {
		s.logger.Debug("git log stream state", slog.String("state", StateDraining.String()))
	}
}

// Next reads exactly one record. It returns io.EOF once git has exited
// cleanly after its last record, a *StreamError if git stopped before
// consuming its input, and a *ShellError for any other non-zero exit.
func (s *RecordStream) Next() ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.closed {
		return nil, ErrStreamClosed
	}
	if s.inputFailed() {
		rest, _ := io.ReadAll(s.r)
		_ = s.wait()
		return nil, s.fail(s.interruptedError(string(rest)))
	}

	record := make([]string, 0, s.arity)
	for len(record) < s.arity {
		tok, err := s.r.ReadBytes(0)
		if err == nil {
			record = append(record, decodeField(tok[:len(tok)-1]))
			continue
		}
		if err != io.EOF {
			return nil, s.fail(fmt.Errorf("read git output: %w", err))
		}
		switch {
		case len(record) == 0 && len(tok) == 0:
			return nil, s.finish()
		case len(record) == s.arity-1:
			// The last field of the last record has no trailing separator.
			record = append(record, decodeField(tok))
		default:
			if endErr := s.end(); endErr != io.EOF {
				return nil, s.fail(endErr)
			}
			return nil, s.fail(fmt.Errorf("%w: output ended after %d of %d fields",
				ErrMalformedRecord, len(record)+1, s.arity))
		}
	}
	return record, nil
}

// Close stops the stream. An unfinished git process is killed and reaped.
// Close is idempotent.
func (s *RecordStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	abandoned := s.err == nil
	s.cancel()
	_ = s.stdout.Close()
	_ = s.wait()
	<-s.writeDone
	if abandoned {
		s.logger.Debug("git log stream abandoned", slog.String("state", s.State().String()))
		s.err = ErrStreamClosed
	}
	return nil
}

func (s *RecordStream) inputFailed() bool {
	select {
	case <-s.writeDone:
		return s.writeErr != nil
	default:
		return false
	}
}

// end is called once stdout reached EOF. It reaps git and reports how the
// stream terminated.
func (s *RecordStream) end() error {
	waitErr := s.wait()
	<-s.writeDone
	if err := s.ctx.Err(); err != nil {
		return err
	}
	if s.writeErr != nil {
		return s.interruptedError("")
	}
	if waitErr != nil {
		return newShellError(s.args, "", s.stderr.String(), waitErr)
	}
	return io.EOF
}

func (s *RecordStream) finish() error {
	err := s.end()
	if err != io.EOF {
		return s.fail(err)
	}
	s.err = io.EOF
	s.state.Store(int32(StateDone))
	s.logger.Debug("git log stream state", slog.String("state", StateDone.String()))
	return io.EOF
}

func (s *RecordStream) fail(err error) error {
	s.err = err
	s.state.Store(int32(StateFailed))
	s.logger.Debug("git log stream state",
		slog.String("state", StateFailed.String()),
		slog.Any("error", err),
	)
	return err
}

func (s *RecordStream) interruptedError(unread string) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	return &StreamError{
		Args:     s.args,
		Stdout:   unread,
		Stderr:   s.stderr.String(),
		ExitCode: s.exitCode(),
		Err:      s.writeErr,
	}
}

func (s *RecordStream) wait() error {
	s.waitOnce.Do(func() {
		s.waitErr = s.cmd.Wait()
		s.logger.Debug("git log stream exited",
			slog.Int("exit_code", s.exitCode()),
			slog.Any("error", s.waitErr),
		)
	})
	return s.waitErr
}

func (s *RecordStream) exitCode() int {
	if s.cmd.ProcessState == nil {
		return -1
	}
	return s.cmd.ProcessState.ExitCode()
}

// decodeField is the single point where wire bytes become text.
func decodeField(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}
