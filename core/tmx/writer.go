package tmx

import (
	"bufio"
	"fmt"
	"io"

	"github.com/bitextio/bitext/core/corpus"
	"github.com/bitextio/bitext/core/encoding"
	"github.com/bitextio/bitext/core/errors"
	"github.com/bitextio/bitext/core/lang"
	"github.com/bitextio/bitext/internal/fileutil"
	"github.com/bitextio/bitext/internal/logging"
)

// Writer streams units into a TMX file. The prolog, root and header are
// emitted lazily on the first Write so the header can declare the source
// language of the first unit; Close emits the closing markup, and a Close
// with zero writes still produces a well-formed document with a headerless
// source language.
type Writer struct {
	path          string
	wc            io.WriteCloser
	bw            *bufio.Writer
	headerProps   *corpus.Properties
	headerWritten bool
	closed        bool
	units         int
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithHeaderProperties embeds corpus-level properties in the header.
func WithHeaderProperties(p *corpus.Properties) WriterOption {
	return func(w *Writer) {
		if p != nil {
			w.headerProps = corpus.CopyProperties(p)
		}
	}
}

// NewWriter returns an unopened writer over path.
func NewWriter(path string, opts ...WriterOption) *Writer {
	w := &Writer{path: path}
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
	logging.CorpusEvent("writer_open", "tmx", w.path)
	return nil
}

func (w *Writer) writeHeader(srclang lang.Tag) error {
	w.headerWritten = true

	if _, err := w.bw.WriteString(xmlProlog); err != nil {
		return errors.NewIO("write", w.path, err)
	}

	attrs := ` datatype="plaintext" o-tmf="bitext" segtype="sentence" adminlang="en"`
	if !srclang.IsZero() {
		attrs += fmt.Sprintf(` srclang="%s"`, encoding.EscapeXMLAttr(srclang.String()))
	}

	if w.headerProps.Size() == 0 {
		if _, err := fmt.Fprintf(w.bw, "  <header%s/>\n  <body>\n", attrs); err != nil {
			return errors.NewIO("write", w.path, err)
		}
		return nil
	}

	if _, err := fmt.Fprintf(w.bw, "  <header%s>\n", attrs); err != nil {
		return errors.NewIO("write", w.path, err)
	}
	if err := w.writeProps(w.headerProps, "    "); err != nil {
		return err
	}
	if _, err := w.bw.WriteString("  </header>\n  <body>\n"); err != nil {
		return errors.NewIO("write", w.path, err)
	}
	return nil
}

func (w *Writer) writeProps(props *corpus.Properties, indent string) error {
	for _, key := range props.Keys() {
		for _, value := range props.GetAll(key) {
			_, err := fmt.Fprintf(w.bw, "%s<prop type=%q>%s</prop>\n",
				indent, encoding.EscapeXMLAttr(key), encoding.EscapeXMLText(encoding.SanitizeString(value)))
			if err != nil {
				return errors.NewIO("write", w.path, err)
			}
		}
	}
	return nil
}

const xmlProlog = "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<tmx version=\"1.4\">\n"

// Write appends one <tu> entry holding the unit's source and target
// variants. Segment text is sanitized and escaped; embedded line breaks are
// preserved verbatim.
func (w *Writer) Write(u corpus.Unit) error {
	if w.bw == nil {
		return errors.NewNotOpen("writer", w.path)
	}
	if !w.headerWritten {
		if err := w.writeHeader(u.Language.Source); err != nil {
			return err
		}
	}

	attrs := fmt.Sprintf(` datatype="plaintext" srclang="%s"`, encoding.EscapeXMLAttr(u.Language.Source.String()))
	if u.TUID != "" {
		attrs += fmt.Sprintf(` tuid="%s"`, encoding.EscapeXMLAttr(u.TUID))
	}
	if u.CreationDate != "" {
		attrs += fmt.Sprintf(` creationdate="%s"`, encoding.EscapeXMLAttr(u.CreationDate))
	}
	if u.ChangeDate != "" {
		attrs += fmt.Sprintf(` changedate="%s"`, encoding.EscapeXMLAttr(u.ChangeDate))
	}

	if _, err := fmt.Fprintf(w.bw, "    <tu%s>\n", attrs); err != nil {
		return errors.NewIO("write", w.path, err)
	}
	if u.Properties.Size() > 0 {
		if err := w.writeProps(u.Properties, "      "); err != nil {
			return err
		}
	}
	if err := w.writeVariant(u.Language.Source, u.Sentence); err != nil {
		return err
	}
	if err := w.writeVariant(u.Language.Target, u.Translation); err != nil {
		return err
	}
	if _, err := w.bw.WriteString("    </tu>\n"); err != nil {
		return errors.NewIO("write", w.path, err)
	}
	w.units++
	return nil
}

func (w *Writer) writeVariant(tag lang.Tag, segment string) error {
	text := encoding.EscapeXMLText(encoding.SanitizeString(segment))
	_, err := fmt.Fprintf(w.bw, "      <tuv xml:lang=\"%s\"><seg>%s</seg></tuv>\n",
		encoding.EscapeXMLAttr(tag.String()), text)
	if err != nil {
		return errors.NewIO("write", w.path, err)
	}
	return nil
}

// Close emits the closing markup and releases the file handle. If nothing
// was written, the header is emitted first (without a declared source
// language) so the output is always well-formed XML. Safe to call more than
// once.
func (w *Writer) Close() error {
	if w.closed || w.wc == nil {
		return nil
	}
	w.closed = true

	var writeErr error
	if !w.headerWritten {
		writeErr = w.writeHeader(lang.Tag{})
	}
	if _, err := w.bw.WriteString("  </body>\n</tmx>\n"); err != nil && writeErr == nil {
		writeErr = errors.NewIO("write", w.path, err)
	}
	if err := w.bw.Flush(); err != nil && writeErr == nil {
		writeErr = errors.NewIO("flush", w.path, err)
	}
	if err := w.wc.Close(); err != nil && writeErr == nil {
		writeErr = errors.NewIO("close", w.path, err)
	}
	logging.CorpusEvent("writer_close", "tmx", w.path, "units", w.units)
	return writeErr
}
