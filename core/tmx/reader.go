// Package tmx implements the TMX 1.4 exchange corpus format: a streaming
// reader that expands each multi-variant <tu> entry into bilingual units, and
// a streaming writer that always produces well-formed XML, even on early or
// error-path close.
package tmx

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/bitextio/bitext/core/corpus"
	"github.com/bitextio/bitext/core/encoding"
	"github.com/bitextio/bitext/core/errors"
	"github.com/bitextio/bitext/core/lang"
	"github.com/bitextio/bitext/internal/fileutil"
	"github.com/bitextio/bitext/internal/logging"
)

// walker states for entry accumulation.
type walkState int

const (
	outsideEntry walkState = iota
	insideEntry
	insideVariant
)

// variant is one <tuv> accumulated while inside an entry.
type variant struct {
	langTag      string
	text         string
	creationDate string
	changeDate   string
	hasSeg       bool
}

// entry is the accumulator for one <tu>, reset on entry end.
type entry struct {
	id           string
	srcLang      string
	creationDate string
	changeDate   string
	props        *corpus.Properties
	variants     []variant
}

// Reader streams units out of a TMX file. Input passes through the XML
// sanitizer, so stray control characters and bad character references do not
// abort the parse. One entry with K usable variants yields K-1 units, one
// per non-source variant.
type Reader struct {
	path string
	rc   io.ReadCloser
	dec  *xml.Decoder

	headerProps   *corpus.Properties
	headerSrcLang string
	headerDone    bool

	pending []corpus.Unit
	eof     bool
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
	r.dec = xml.NewDecoder(encoding.NewSanitizingReader(rc))
	logging.CorpusEvent("reader_open", "tmx", r.path)
	return nil
}

// Close releases the underlying file handle. Safe to call more than once.
func (r *Reader) Close() error {
	if r.rc == nil {
		return nil
	}
	rc := r.rc
	r.rc = nil
	r.dec = nil
	logging.CorpusEvent("reader_close", "tmx", r.path)
	return rc.Close()
}

// HeaderProperties returns the header-level properties. Valid once the
// header has been consumed (after ReadHeader or the first Next).
func (r *Reader) HeaderProperties() *corpus.Properties {
	return r.headerProps
}

// HeaderSourceLanguage returns the srclang declared on the header, if any.
func (r *Reader) HeaderSourceLanguage() string {
	return r.headerSrcLang
}

func local(name xml.Name) string {
	return name.Local
}

func attr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// langAttr returns xml:lang, falling back to a bare lang attribute.
func langAttr(se xml.StartElement) string {
	for _, a := range se.Attr {
		if a.Name.Local == "lang" && a.Name.Space == "http://www.w3.org/XML/1998/namespace" {
			return a.Value
		}
	}
	return attr(se, "lang")
}

// ReadHeader consumes tokens up to the end of the <header> element (or the
// start of the body, for headerless files), capturing header properties and
// the declared source language. It never reads past the header, so corpus
// metadata is available without scanning the file.
func (r *Reader) ReadHeader() error {
	if r.dec == nil {
		return errors.NewNotOpen("reader", r.path)
	}
	if r.headerDone {
		return nil
	}

	r.headerProps = corpus.NewProperties()
	inHeader := false
	for {
		tok, err := r.dec.Token()
		if err == io.EOF {
			r.headerDone = true
			r.eof = true
			return nil
		}
		if err != nil {
			return &errors.RecordError{Path: r.path, Message: "XML parse failure in header", Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch local(t.Name) {
			case "header":
				inHeader = true
				r.headerSrcLang = attr(t, "srclang")
			case "prop":
				if inHeader {
					propType := attr(t, "type")
					text, err := r.collectText(t.Name)
					if err != nil {
						return err
					}
					if propType != "" {
						r.headerProps.Put(propType, text)
					}
				}
			case "body", "tu":
				// Headerless document; the header phase ends at the first
				// body element. A tu seen here is consumed now, since the
				// decoder cannot push the token back.
				r.headerDone = true
				if local(t.Name) == "tu" {
					return r.enqueueEntry(t)
				}
				return nil
			}
		case xml.EndElement:
			if local(t.Name) == "header" {
				r.headerDone = true
				return nil
			}
		}
	}
}

// collectText consumes tokens until the end of the element named start,
// concatenating all nested character data.
func (r *Reader) collectText(start xml.Name) (string, error) {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := r.dec.Token()
		if err != nil {
			return "", &errors.RecordError{Path: r.path, Message: "XML parse failure in " + start.Local, Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			sb.Write(t)
		}
	}
	return sb.String(), nil
}

// Next returns the next unit, or io.EOF when the document is exhausted.
// Entries that cannot produce a record (under two usable variants) are
// skipped as a data-quality signal; a variant language tag that fails to
// parse is a hard error.
func (r *Reader) Next() (corpus.Unit, error) {
	if r.dec == nil {
		return corpus.Unit{}, errors.NewNotOpen("reader", r.path)
	}
	if !r.headerDone {
		if err := r.ReadHeader(); err != nil {
			return corpus.Unit{}, err
		}
	}

	for {
		if len(r.pending) > 0 {
			u := r.pending[0]
			r.pending = r.pending[1:]
			return u, nil
		}
		if r.eof {
			return corpus.Unit{}, io.EOF
		}

		tok, err := r.dec.Token()
		if err == io.EOF {
			r.eof = true
			continue
		}
		if err != nil {
			return corpus.Unit{}, &errors.RecordError{Path: r.path, Message: "XML parse failure", Err: err}
		}

		se, ok := tok.(xml.StartElement)
		if !ok || local(se.Name) != "tu" {
			continue
		}
		if err := r.enqueueEntry(se); err != nil {
			return corpus.Unit{}, err
		}
	}
}

// enqueueEntry walks one <tu> subtree with an explicit state machine,
// accumulates its variants, and queues the expanded units.
func (r *Reader) enqueueEntry(se xml.StartElement) error {
	e := entry{
		id:           attr(se, "tuid"),
		srcLang:      attr(se, "srclang"),
		creationDate: attr(se, "creationdate"),
		changeDate:   attr(se, "changedate"),
		props:        corpus.NewProperties(),
	}

	state := insideEntry
	var current variant
	var seg strings.Builder
	segDepth := 0

	for {
		tok, err := r.dec.Token()
		if err != nil {
			return &errors.RecordError{Path: r.path, Message: "XML parse failure in tu", Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch state {
			case insideEntry:
				switch local(t.Name) {
				case "tuv":
					state = insideVariant
					current = variant{
						langTag:      langAttr(t),
						creationDate: attr(t, "creationdate"),
						changeDate:   attr(t, "changedate"),
					}
				case "prop":
					propType := attr(t, "type")
					text, err := r.collectText(t.Name)
					if err != nil {
						return err
					}
					if propType != "" {
						e.props.Put(propType, text)
					}
				default:
					if err := r.skipElement(); err != nil {
						return err
					}
				}
			case insideVariant:
				if local(t.Name) == "seg" && segDepth == 0 {
					current.hasSeg = true
					seg.Reset()
					segDepth = 1
				} else if segDepth > 0 {
					segDepth++
				} else if local(t.Name) == "prop" {
					// Variant-level props carry no record fields; consume.
					if _, err := r.collectText(t.Name); err != nil {
						return err
					}
				} else {
					if err := r.skipElement(); err != nil {
						return err
					}
				}
			}

		case xml.CharData:
			if segDepth > 0 {
				seg.Write(t)
			}

		case xml.EndElement:
			switch local(t.Name) {
			case "seg":
				if segDepth > 0 {
					segDepth--
					if segDepth == 0 {
						current.text = seg.String()
					}
				}
			case "tuv":
				if state == insideVariant {
					e.variants = append(e.variants, current)
					state = insideEntry
				}
			case "tu":
				units, err := r.expandEntry(e)
				if err != nil {
					return err
				}
				r.pending = append(r.pending, units...)
				return nil
			default:
				if segDepth > 0 {
					segDepth--
				}
			}
		}
	}
}

// skipElement consumes the current element's subtree after its start token.
func (r *Reader) skipElement() error {
	if err := r.dec.Skip(); err != nil {
		return &errors.RecordError{Path: r.path, Message: "XML parse failure", Err: err}
	}
	return nil
}

// expandEntry turns an accumulated entry into zero or more units: it picks
// the source variant and pairs it with every other usable variant.
func (r *Reader) expandEntry(e entry) ([]corpus.Unit, error) {
	usable := make([]variant, 0, len(e.variants))
	for _, v := range e.variants {
		if v.hasSeg && v.langTag != "" && v.text != "" {
			usable = append(usable, v)
		}
	}
	if len(usable) < 2 {
		return nil, nil
	}

	tags := make([]lang.Tag, len(usable))
	for i, v := range usable {
		tag, err := lang.Parse(v.langTag)
		if err != nil {
			return nil, err
		}
		tags[i] = tag
	}

	candidate := e.srcLang
	if candidate == "" {
		candidate = r.headerSrcLang
	}
	if candidate == "" {
		candidate = usable[0].langTag
	}
	candidateTag, err := lang.Parse(candidate)
	if err != nil {
		return nil, err
	}

	srcIdx := findSourceIndex(tags, candidateTag)
	source := usable[srcIdx]
	sourceTag := tags[srcIdx]

	var props *corpus.Properties
	if e.props.Size() > 0 {
		props = e.props
	}

	units := make([]corpus.Unit, 0, len(usable)-1)
	for i, target := range usable {
		if i == srcIdx {
			continue
		}

		creationDate := target.creationDate
		if creationDate == "" {
			creationDate = e.creationDate
		}
		changeDate := target.changeDate
		if changeDate == "" {
			changeDate = e.changeDate
		}

		var unitProps *corpus.Properties
		if props != nil {
			unitProps = corpus.CopyProperties(props)
		}
		units = append(units, corpus.Unit{
			Language:     lang.NewDirection(sourceTag, tags[i]),
			Sentence:     source.text,
			Translation:  target.text,
			TUID:         e.id,
			CreationDate: creationDate,
			ChangeDate:   changeDate,
			Properties:   unitProps,
		})
	}
	return units, nil
}

// findSourceIndex selects the source variant: exact canonical match first,
// then the first variant the candidate is equal-or-more-general than, then
// the first variant equal-or-more-general than the candidate, then index 0.
func findSourceIndex(tags []lang.Tag, candidate lang.Tag) int {
	for i, tag := range tags {
		if tag == candidate {
			return i
		}
	}
	for i, tag := range tags {
		if candidate.IsEqualOrMoreGeneralThan(tag) {
			return i
		}
	}
	for i, tag := range tags {
		if tag.IsEqualOrMoreGeneralThan(candidate) {
			return i
		}
	}
	return 0
}
