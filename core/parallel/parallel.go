// Package parallel implements the aligned plain-text pair corpus format: two
// files, one per language, where line i of the source file translates line i
// of the target file.
package parallel

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"

	"github.com/bitextio/bitext/core/corpus"
	"github.com/bitextio/bitext/core/errors"
	"github.com/bitextio/bitext/core/lang"
	"github.com/bitextio/bitext/internal/fileutil"
	"github.com/bitextio/bitext/internal/logging"
)

// Corpus is a pair of line-aligned text files `name.<srcTag>` and
// `name.<tgtTag>`; the single language direction comes from the extensions.
type Corpus struct {
	sourcePath string
	targetPath string
	name       string
	direction  lang.Direction

	length  int
	counted bool
}

// New builds a Corpus over a source/target file pair. The file extensions
// must be parsable language tags.
func New(sourcePath, targetPath string) (*Corpus, error) {
	srcExt := strings.TrimPrefix(filepath.Ext(sourcePath), ".")
	tgtExt := strings.TrimPrefix(filepath.Ext(targetPath), ".")
	direction, err := lang.ParseDirection(srcExt, tgtExt)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(sourcePath)
	return &Corpus{
		sourcePath: sourcePath,
		targetPath: targetPath,
		name:       strings.TrimSuffix(base, filepath.Ext(base)),
		direction:  direction,
	}, nil
}

// Name returns the corpus name (source filename without extension).
func (c *Corpus) Name() string { return c.name }

// SourcePath returns the source-side file path.
func (c *Corpus) SourcePath() string { return c.sourcePath }

// TargetPath returns the target-side file path.
func (c *Corpus) TargetPath() string { return c.targetPath }

// Direction returns the corpus language direction.
func (c *Corpus) Direction() lang.Direction { return c.direction }

// Languages returns the single direction of the pair.
func (c *Corpus) Languages() ([]lang.Direction, error) {
	return []lang.Direction{c.direction}, nil
}

// Len counts the aligned line pairs. The format has no trailer, so the first
// call is a full pass over both files; the count is memoized until the corpus
// is rewritten through OpenWriter.
func (c *Corpus) Len() (int, error) {
	if c.counted {
		return c.length, nil
	}

	r, err := c.OpenReader()
	if err != nil {
		return 0, err
	}
	defer r.Close()

	count := 0
	for {
		_, err := r.Next()
		if err == io.EOF {
			c.length = count
			c.counted = true
			return count, nil
		}
		if err != nil {
			return count, err
		}
		count++
	}
}

// Properties returns nil: the format carries no corpus metadata.
func (c *Corpus) Properties() (*corpus.Properties, error) {
	return nil, nil
}

// OpenReader opens a streaming reader over the pair.
func (c *Corpus) OpenReader() (corpus.Reader, error) {
	r := NewReader(c.direction, c.sourcePath, c.targetPath)
	if err := r.Open(); err != nil {
		return nil, err
	}
	return r, nil
}

// OpenWriter opens a streaming writer over the pair and invalidates the
// memoized length.
func (c *Corpus) OpenWriter() (corpus.Writer, error) {
	w := NewWriter(c.direction, c.sourcePath, c.targetPath)
	if err := w.Open(); err != nil {
		return nil, err
	}
	c.counted = false
	return w, nil
}

// Reader yields one unit per pair of corresponding lines, stopping at the
// shorter file. Alignment is not validated; callers needing a strict check
// compare the two files' line counts themselves.
type Reader struct {
	direction  lang.Direction
	sourcePath string
	targetPath string

	sourceRC io.ReadCloser
	targetRC io.ReadCloser
	source   *bufio.Reader
	target   *bufio.Reader
	eof      bool
}

// NewReader returns an unopened reader over the pair.
func NewReader(direction lang.Direction, sourcePath, targetPath string) *Reader {
	return &Reader{direction: direction, sourcePath: sourcePath, targetPath: targetPath}
}

// Open acquires both file handles.
func (r *Reader) Open() error {
	sourceRC, err := fileutil.OpenReader(r.sourcePath)
	if err != nil {
		return err
	}
	targetRC, err := fileutil.OpenReader(r.targetPath)
	if err != nil {
		sourceRC.Close()
		return err
	}
	r.sourceRC = sourceRC
	r.targetRC = targetRC
	r.source = bufio.NewReader(sourceRC)
	r.target = bufio.NewReader(targetRC)
	logging.CorpusEvent("reader_open", "parallel", r.sourcePath)
	return nil
}

// Next returns the next aligned pair, or io.EOF once either file runs out.
func (r *Reader) Next() (corpus.Unit, error) {
	if r.source == nil {
		return corpus.Unit{}, errors.NewNotOpen("reader", r.sourcePath)
	}
	if r.eof {
		return corpus.Unit{}, io.EOF
	}

	srcLine, srcErr := r.source.ReadString('\n')
	tgtLine, tgtErr := r.target.ReadString('\n')
	if srcErr != nil && srcErr != io.EOF {
		return corpus.Unit{}, errors.NewIO("read", r.sourcePath, srcErr)
	}
	if tgtErr != nil && tgtErr != io.EOF {
		return corpus.Unit{}, errors.NewIO("read", r.targetPath, tgtErr)
	}

	// A side that ends exactly at EOF with no text has no line to pair.
	if (srcErr == io.EOF && srcLine == "") || (tgtErr == io.EOF && tgtLine == "") {
		r.eof = true
		return corpus.Unit{}, io.EOF
	}
	if srcErr == io.EOF || tgtErr == io.EOF {
		r.eof = true
	}

	return corpus.Unit{
		Language:    r.direction,
		Sentence:    strings.TrimSpace(srcLine),
		Translation: strings.TrimSpace(tgtLine),
	}, nil
}

// Close releases both file handles. Safe to call more than once.
func (r *Reader) Close() error {
	if r.sourceRC == nil {
		return nil
	}
	sourceRC, targetRC := r.sourceRC, r.targetRC
	r.sourceRC, r.targetRC = nil, nil
	r.source, r.target = nil, nil

	logging.CorpusEvent("reader_close", "parallel", r.sourcePath)
	err := sourceRC.Close()
	if terr := targetRC.Close(); terr != nil && err == nil {
		err = terr
	}
	return err
}

// Writer writes exactly one line per unit to each file, flattening embedded
// line breaks to spaces so the pair stays alignable.
type Writer struct {
	direction  lang.Direction
	sourcePath string
	targetPath string

	sourceWC io.WriteCloser
	targetWC io.WriteCloser
	source   *bufio.Writer
	target   *bufio.Writer
	closed   bool
}

// NewWriter returns an unopened writer over the pair.
func NewWriter(direction lang.Direction, sourcePath, targetPath string) *Writer {
	return &Writer{direction: direction, sourcePath: sourcePath, targetPath: targetPath}
}

// Open creates both files, truncating previous content.
func (w *Writer) Open() error {
	sourceWC, err := fileutil.CreateWriter(w.sourcePath)
	if err != nil {
		return err
	}
	targetWC, err := fileutil.CreateWriter(w.targetPath)
	if err != nil {
		sourceWC.Close()
		return err
	}
	w.sourceWC = sourceWC
	w.targetWC = targetWC
	w.source = bufio.NewWriter(sourceWC)
	w.target = bufio.NewWriter(targetWC)
	logging.CorpusEvent("writer_open", "parallel", w.sourcePath)
	return nil
}

func flatten(text string) string {
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	return strings.TrimSpace(text)
}

// Write appends one line to each side.
func (w *Writer) Write(u corpus.Unit) error {
	if w.source == nil {
		return errors.NewNotOpen("writer", w.sourcePath)
	}
	if _, err := w.source.WriteString(flatten(u.Sentence) + "\n"); err != nil {
		return errors.NewIO("write", w.sourcePath, err)
	}
	if _, err := w.target.WriteString(flatten(u.Translation) + "\n"); err != nil {
		return errors.NewIO("write", w.targetPath, err)
	}
	return nil
}

// Close flushes and releases both file handles. Safe to call more than once.
func (w *Writer) Close() error {
	if w.closed || w.sourceWC == nil {
		return nil
	}
	w.closed = true

	var first error
	if err := w.source.Flush(); err != nil {
		first = errors.NewIO("flush", w.sourcePath, err)
	}
	if err := w.target.Flush(); err != nil && first == nil {
		first = errors.NewIO("flush", w.targetPath, err)
	}
	if err := w.sourceWC.Close(); err != nil && first == nil {
		first = errors.NewIO("close", w.sourcePath, err)
	}
	if err := w.targetWC.Close(); err != nil && first == nil {
		first = errors.NewIO("close", w.targetPath, err)
	}
	logging.CorpusEvent("writer_close", "parallel", w.sourcePath)
	return first
}
