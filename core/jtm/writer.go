package jtm

import (
	"bufio"
	"io"

	"github.com/google/uuid"

	"github.com/bitextio/bitext/core/corpus"
	"github.com/bitextio/bitext/core/errors"
	"github.com/bitextio/bitext/internal/fileutil"
	"github.com/bitextio/bitext/internal/logging"
)

// Writer streams units into a JTM file, counting per direction as it goes.
// Close appends the footer line; until then the file has no usable summary.
// The footer is written even when Close follows a failed Write, so a later
// reader sees a well-formed, truncated file.
type Writer struct {
	path       string
	wc         io.WriteCloser
	bw         *bufio.Writer
	counter    *corpus.Counter
	properties *corpus.Properties
	assignIDs  bool
	closed     bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithProperties seeds the footer with corpus-level properties, typically to
// carry metadata over from a source corpus being re-filtered.
func WithProperties(p *corpus.Properties) WriterOption {
	return func(w *Writer) {
		if p != nil {
			w.properties = corpus.CopyProperties(p)
		}
	}
}

// WithAssignedIDs makes the writer assign a fresh UUID to any unit written
// without a TUID.
func WithAssignedIDs() WriterOption {
	return func(w *Writer) { w.assignIDs = true }
}

// NewWriter returns an unopened writer over path.
func NewWriter(path string, opts ...WriterOption) *Writer {
	w := &Writer{path: path, counter: corpus.NewCounter()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Open creates the underlying file, truncating any previous content.
func (w *Writer) Open() error {
	wc, err := fileutil.CreateWriter(w.path)
	if err != nil {
		return err
	}
	w.wc = wc
	w.bw = bufio.NewWriter(wc)
	logging.CorpusEvent("writer_open", "jtm", w.path)
	return nil
}

// AddProperty appends a corpus-level property carried into the footer.
func (w *Writer) AddProperty(key, value string) {
	if w.properties == nil {
		w.properties = corpus.NewProperties()
	}
	w.properties.Put(key, value)
}

// Write appends one unit line. Units are written in call order, with no
// reordering and no deduplication.
func (w *Writer) Write(u corpus.Unit) error {
	if w.bw == nil {
		return errors.NewNotOpen("writer", w.path)
	}

	if w.assignIDs && u.TUID == "" {
		u.TUID = uuid.NewString()
	}

	line, err := MarshalUnit(u)
	if err != nil {
		return &errors.RecordError{Path: w.path, Message: "unit not serializable", Err: err}
	}

	if _, err := w.bw.Write(line); err != nil {
		return errors.NewIO("write", w.path, err)
	}
	if err := w.bw.WriteByte('\n'); err != nil {
		return errors.NewIO("write", w.path, err)
	}
	// Counted only after the line reached the stream, so a failed write does
	// not inflate the footer.
	w.counter.Count(u.Language)
	return nil
}

// Counter exposes the per-direction counts accumulated so far.
func (w *Writer) Counter() *corpus.Counter {
	return w.counter
}

// Close appends the footer line and releases the file handle. Safe to call
// more than once; only the first call writes the footer.
func (w *Writer) Close() error {
	if w.closed || w.wc == nil {
		return nil
	}
	w.closed = true

	footer := &Footer{Counter: w.counter, Properties: w.properties}
	line, err := footer.MarshalLine()

	var writeErr error
	if err == nil {
		if _, werr := w.bw.Write(append(line, '\n')); werr != nil {
			writeErr = errors.NewIO("write", w.path, werr)
		}
	} else {
		writeErr = err
	}

	if ferr := w.bw.Flush(); ferr != nil && writeErr == nil {
		writeErr = errors.NewIO("flush", w.path, ferr)
	}
	if cerr := w.wc.Close(); cerr != nil && writeErr == nil {
		writeErr = errors.NewIO("close", w.path, cerr)
	}
	logging.CorpusEvent("writer_close", "jtm", w.path, "units", w.counter.Total())
	return writeErr
}
