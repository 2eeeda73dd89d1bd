// Package output owns the dump destination: a file or stdout, buffered,
// optionally gzip-compressed. Any write failure is wrapped in ErrSinkWrite
// and is fatal to the run, since output integrity can no longer be assumed.
package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

var ErrSinkWrite = errors.New("sink write error")

type Writer struct {
	file *os.File
	gz   *gzip.Writer
	buf  *bufio.Writer
}

// New opens the dump destination. An empty path means stdout. With compress
// set, a file path gets a ".gz" suffix unless it already carries one.
func New(path string, compress bool) (*Writer, error) {
	w := &Writer{}

	var dest io.Writer = os.Stdout
	if path != "" {
		if compress && !hasGzSuffix(path) {
			path += ".gz"
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file: %w", err)
		}
		w.file = f
		dest = f
	}

	if compress {
		w.gz = gzip.NewWriter(dest)
		dest = w.gz
	}
	w.buf = bufio.NewWriter(dest)
	return w, nil
}

// NewFromWriter wraps an existing destination, e.g. an in-memory buffer.
func NewFromWriter(dest io.Writer) *Writer {
	return &Writer{buf: bufio.NewWriter(dest)}
}

func hasGzSuffix(path string) bool {
	return len(path) > 3 && path[len(path)-3:] == ".gz"
}

func (w *Writer) Print(s string) error {
	if _, err := w.buf.WriteString(s); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkWrite, err)
	}
	return nil
}

func (w *Writer) Println(s string) error {
	if err := w.Print(s); err != nil {
		return err
	}
	return w.Print("\n")
}

// Statement writes one complete SQL statement with its terminating delimiter.
func (w *Writer) Statement(s string) error {
	if err := w.Print(s); err != nil {
		return err
	}
	return w.Print(";\n")
}

func (w *Writer) Flush() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkWrite, err)
	}
	if w.gz != nil {
		if err := w.gz.Flush(); err != nil {
			return fmt.Errorf("%w: %v", ErrSinkWrite, err)
		}
	}
	return nil
}

// Close flushes and releases the destination. Stdout is left open.
func (w *Writer) Close() error {
	flushErr := w.Flush()
	if w.gz != nil {
		if err := w.gz.Close(); err != nil && flushErr == nil {
			flushErr = fmt.Errorf("%w: %v", ErrSinkWrite, err)
		}
	}
	if w.file != nil {
		if err := w.file.Close(); err != nil && flushErr == nil {
			flushErr = fmt.Errorf("%w: %v", ErrSinkWrite, err)
		}
	}
	return flushErr
}
