// Package fastq reads and writes four-line sequence records, transparently
// gzipped when the file name ends in .gz.
package fastq

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
)

// Record is one read. The pipeline never mutates a record after parsing,
// except for the optional id annotation on emission.
type Record struct {
	ID       string
	Sequence string
	Quality  string
}

// Reader pulls records from a stream. It is finite and not restartable;
// Next returns io.EOF once the stream is exhausted. A record truncated by
// end of input is reported as io.EOF; a structurally malformed record is
// an error.
type Reader struct {
	sc      *bufio.Scanner
	record  int
	closers []io.Closer
}

// NewReader wraps an uncompressed stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{sc: bufio.NewScanner(r)}
}

// Open opens a fastq file, decompressing when the name ends in .gz.
// Close must be called when done.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := NewReader(f)
	r.closers = append(r.closers, f)
	if strings.HasSuffix(path, ".gz") {
		gr, err := pgzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("fastq: %s: %w", path, err)
		}
		r.sc = bufio.NewScanner(gr)
		r.closers = []io.Closer{gr, f}
	}
	return r, nil
}

// Next returns the next record, or io.EOF at end of input.
func (r *Reader) Next() (*Record, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	r.record++
	id := r.sc.Text()
	if !strings.HasPrefix(id, "@") {
		return nil, fmt.Errorf("fastq: record %d: expected '@' at the beginning of header line, got: %s", r.record, id)
	}
	seq, err := r.line()
	if err != nil {
		return nil, err
	}
	plus, err := r.line()
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(plus, "+") {
		return nil, fmt.Errorf("fastq: record %d: expected '+' line, got: %s", r.record, plus)
	}
	qual, err := r.line()
	if err != nil {
		return nil, err
	}
	if len(seq) != len(qual) {
		return nil, fmt.Errorf("fastq: record %d: sequence and quality must have the same length, got %d and %d", r.record, len(seq), len(qual))
	}
	return &Record{ID: id, Sequence: seq, Quality: qual}, nil
}

// line reads one more line of the current record; running out of input
// mid-record counts as end of stream.
func (r *Reader) line() (string, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.sc.Text(), nil
}

// Close closes the underlying file, if Open created one.
func (r *Reader) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Writer emits records in the four-line form with a bare '+' separator.
type Writer struct {
	buf     *bufio.Writer
	closers []io.Closer
}

// NewWriter wraps an uncompressed stream.
func NewWriter(w io.Writer) *Writer {
	return &Writer{buf: bufio.NewWriter(w)}
}

// Create creates a fastq file, compressing when the name ends in .gz.
// Close must be called to flush.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := &Writer{closers: []io.Closer{f}}
	if strings.HasSuffix(path, ".gz") {
		gw := pgzip.NewWriter(f)
		w.buf = bufio.NewWriter(gw)
		w.closers = []io.Closer{gw, f}
	} else {
		w.buf = bufio.NewWriter(f)
	}
	return w, nil
}

// Write emits one record.
func (w *Writer) Write(rec *Record) error {
	w.buf.WriteString(rec.ID)
	w.buf.WriteByte('\n')
	w.buf.WriteString(rec.Sequence)
	w.buf.WriteByte('\n')
	w.buf.WriteString("+\n")
	w.buf.WriteString(rec.Quality)
	_, err := w.buf.WriteString("\n")
	return err
}

// Flush flushes buffered records to the underlying stream.
func (w *Writer) Flush() error {
	return w.buf.Flush()
}

// Close flushes and closes the underlying file, if Create created one.
func (w *Writer) Close() error {
	first := w.buf.Flush()
	for _, c := range w.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
