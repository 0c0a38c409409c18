package jtm

import (
	"bufio"
	"io"
	"strings"

	"github.com/bitextio/bitext/core/corpus"
	"github.com/bitextio/bitext/core/errors"
	"github.com/bitextio/bitext/internal/fileutil"
	"github.com/bitextio/bitext/internal/logging"
)

// Reader streams units out of a JTM file, skipping footer lines. Compressed
// files (.gz, .xz) are decompressed transparently.
type Reader struct {
	path string
	rc   io.ReadCloser
	br   *bufio.Reader
	line int
	eof  bool
}

// NewReader returns an unopened reader over path.
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// Open acquires the underlying file handle.
func (r *Reader) Open() error {
	rc, err := fileutil.OpenReader(r.path)
	if err != nil {
		return err
	}
	r.rc = rc
	r.br = bufio.NewReader(rc)
	logging.CorpusEvent("reader_open", "jtm", r.path)
	return nil
}

// Next returns the next unit, or io.EOF when the file is exhausted. Lines
// starting with the footer prefix are skipped wherever they appear; any other
// unparsable line fails with ErrMalformedRecord.
func (r *Reader) Next() (corpus.Unit, error) {
	if r.br == nil {
		return corpus.Unit{}, errors.NewNotOpen("reader", r.path)
	}

	for {
		if r.eof {
			return corpus.Unit{}, io.EOF
		}

		line, err := r.br.ReadString('\n')
		if err == io.EOF {
			r.eof = true
		} else if err != nil {
			return corpus.Unit{}, errors.NewIO("read", r.path, err)
		}

		line = strings.TrimSuffix(line, "\n")
		if line == "" && r.eof {
			return corpus.Unit{}, io.EOF
		}
		r.line++

		if strings.HasPrefix(line, FooterPrefix) {
			continue
		}

		u, err := UnmarshalUnit([]byte(line))
		if err != nil {
			return corpus.Unit{}, &errors.RecordError{Path: r.path, Line: r.line, Message: "invalid JSON record", Err: err}
		}
		return u, nil
	}
}

// Close releases the underlying file handle. Safe to call more than once.
func (r *Reader) Close() error {
	if r.rc == nil {
		return nil
	}
	rc := r.rc
	r.rc = nil
	r.br = nil
	logging.CorpusEvent("reader_close", "jtm", r.path)
	return rc.Close()
}
