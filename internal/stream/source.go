package stream

import (
	"bufio"
	"context"
	"io"
)

// LineSource supplies raw lines to the decoder. The decoder never performs
// network I/O itself; the transport hands it text already split on newline
// boundaries. Next returns io.EOF when the source closes without error.
type LineSource interface {
	Next(ctx context.Context) (string, error)
}

// SliceSource serves a fixed set of lines, then io.EOF. It exists for tests
// and for replaying captured responses.
type SliceSource struct {
	lines []string
	i     int
}

func NewSliceSource(lines ...string) *SliceSource {
	return &SliceSource{lines: lines}
}

func (s *SliceSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.i >= len(s.lines) {
		return "", io.EOF
	}
	line := s.lines[s.i]
	s.i++
	return line, nil
}

// ReaderSource splits an io.Reader (typically an HTTP response body) into
// lines. Timeouts belong to the transport that owns the reader; closing the
// body unblocks a pending read.
type ReaderSource struct {
	scanner *bufio.Scanner
}

func NewReaderSource(r io.Reader) *ReaderSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &ReaderSource{scanner: sc}
}

func (s *ReaderSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
