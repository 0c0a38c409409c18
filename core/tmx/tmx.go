package tmx

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitextio/bitext/core/corpus"
	"github.com/bitextio/bitext/core/errors"
	"github.com/bitextio/bitext/core/lang"
	"github.com/bitextio/bitext/internal/fileutil"
)

// Corpus is a TMX file handle. The format carries no trailer, so Languages
// and Len need one full streaming pass; both are memoized per instance.
// Properties needs only the header and stops reading there.
type Corpus struct {
	path string
	name string

	languages   []lang.Direction
	length      int
	scanned     bool
	headerProps *corpus.Properties
	headerRead  bool
}

// New builds a Corpus over path.
func New(path string) *Corpus {
	base := filepath.Base(fileutil.StripCompressionExt(path))
	return &Corpus{
		path: path,
		name: strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

// Path returns the backing file path.
func (c *Corpus) Path() string { return c.path }

// Name returns the corpus name (filename without extension).
func (c *Corpus) Name() string { return c.name }

// scan runs the full streaming pass populating languages and length.
func (c *Corpus) scan() error {
	if c.scanned {
		return nil
	}
	if _, err := os.Stat(c.path); err != nil {
		if os.IsNotExist(err) {
			c.scanned = true
			return nil
		}
		return errors.NewIO("stat", c.path, err)
	}

	r := NewReader(c.path)
	if err := r.Open(); err != nil {
		return err
	}
	defer r.Close()

	seen := make(map[lang.Direction]bool)
	var order []lang.Direction
	count := 0
	for {
		u, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		count++
		if !seen[u.Language] {
			seen[u.Language] = true
			order = append(order, u.Language)
		}
	}

	c.languages = order
	c.length = count
	c.scanned = true
	return nil
}

// Languages returns the language directions present, in first-seen order.
func (c *Corpus) Languages() ([]lang.Direction, error) {
	if err := c.scan(); err != nil {
		return nil, err
	}
	return c.languages, nil
}

// Len returns the total number of units.
func (c *Corpus) Len() (int, error) {
	if err := c.scan(); err != nil {
		return 0, err
	}
	return c.length, nil
}

// Properties returns the header properties, reading only as far as the
// header. Returns nil for a missing file or an empty header.
func (c *Corpus) Properties() (*corpus.Properties, error) {
	if c.headerRead {
		return c.headerProps, nil
	}
	if _, err := os.Stat(c.path); err != nil {
		if os.IsNotExist(err) {
			c.headerRead = true
			return nil, nil
		}
		return nil, errors.NewIO("stat", c.path, err)
	}

	r := NewReader(c.path)
	if err := r.Open(); err != nil {
		return nil, err
	}
	defer r.Close()

	if err := r.ReadHeader(); err != nil {
		return nil, err
	}
	if props := r.HeaderProperties(); props.Size() > 0 {
		c.headerProps = props
	}
	c.headerRead = true
	return c.headerProps, nil
}

// OpenReader opens a streaming reader over the corpus.
func (c *Corpus) OpenReader() (corpus.Reader, error) {
	r := NewReader(c.path)
	if err := r.Open(); err != nil {
		return nil, err
	}
	return r, nil
}

// OpenWriter opens a streaming writer over the corpus, carrying any header
// properties of the existing file into the new header.
func (c *Corpus) OpenWriter() (corpus.Writer, error) {
	props, err := c.Properties()
	if err != nil {
		return nil, err
	}

	w := NewWriter(c.path, WithHeaderProperties(props))
	if err := w.Open(); err != nil {
		return nil, err
	}
	// A new writer invalidates the memoized summary.
	c.scanned = false
	c.languages = nil
	c.length = 0
	c.headerRead = false
	c.headerProps = nil
	return w, nil
}

// Detect reports whether path names a TMX file.
func Detect(path string) bool {
	return strings.HasSuffix(strings.ToLower(fileutil.StripCompressionExt(path)), ".tmx")
}

func init() {
	corpus.RegisterFormat(corpus.Format{
		Name:   "tmx",
		Detect: Detect,
		Open: func(path string) (corpus.Corpus, error) {
			return New(path), nil
		},
	})
}
