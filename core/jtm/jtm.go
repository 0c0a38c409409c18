package jtm

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitextio/bitext/core/corpus"
	"github.com/bitextio/bitext/core/errors"
	"github.com/bitextio/bitext/core/lang"
	"github.com/bitextio/bitext/internal/fileutil"
)

// FilenamePattern documents the identity encoded in a JTM filename.
const FilenamePattern = "<datasource>.<id>.<srcTag>__<tgtTag>.jtm[.gz|.xz]"

// Corpus is a JTM file handle. Identity (datasource key, id, language
// direction) is parsed once from the filename; summary metadata comes from
// the footer and is memoized per instance.
type Corpus struct {
	path          string
	name          string
	datasourceKey string
	id            string
	direction     lang.Direction

	footer       *Footer
	footerLoaded bool
}

// New builds a Corpus over path. The filename must match FilenamePattern;
// the datasource key is case-insensitive (stored lowercase).
func New(path string) (*Corpus, error) {
	base := filepath.Base(fileutil.StripCompressionExt(path))

	parts := strings.Split(base, ".")
	if len(parts) < 3 {
		return nil, errors.NewFilename(filepath.Base(path), FilenamePattern)
	}

	langKey := strings.SplitN(parts[2], "__", 2)
	if len(langKey) != 2 {
		return nil, errors.NewFilename(filepath.Base(path), FilenamePattern)
	}
	direction, err := lang.ParseDirection(langKey[0], langKey[1])
	if err != nil {
		return nil, &errors.FilenameError{Filename: filepath.Base(path), Pattern: FilenamePattern, Err: err}
	}

	return &Corpus{
		path:          path,
		name:          filepath.Base(path),
		datasourceKey: strings.ToLower(parts[0]),
		id:            parts[1],
		direction:     direction,
	}, nil
}

// List enumerates the JTM corpora in dir, including compressed ones.
func List(dir string) ([]*Corpus, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewIO("list", dir, err)
	}

	var corpora []*Corpus
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := fileutil.StripCompressionExt(entry.Name())
		if !strings.HasSuffix(name, ".jtm") {
			continue
		}
		c, err := New(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		corpora = append(corpora, c)
	}
	return corpora, nil
}

// Path returns the backing file path.
func (c *Corpus) Path() string { return c.path }

// Name returns the corpus filename.
func (c *Corpus) Name() string { return c.name }

// ID returns the corpus id from the filename.
func (c *Corpus) ID() string { return c.id }

// DatasourceKey returns the lowercase datasource key from the filename.
func (c *Corpus) DatasourceKey() string { return c.datasourceKey }

// Direction returns the language direction from the filename.
func (c *Corpus) Direction() lang.Direction { return c.direction }

// Footer returns the parsed corpus footer, memoized per instance. A missing
// file yields (nil, nil); a present file without a footer line fails with
// ErrMissingFooter. For uncompressed files only the file tail is read.
func (c *Corpus) Footer() (*Footer, error) {
	if c.footerLoaded {
		return c.footer, nil
	}

	if _, err := os.Stat(c.path); err != nil {
		if os.IsNotExist(err) {
			c.footerLoaded = true
			return nil, nil
		}
		return nil, errors.NewIO("stat", c.path, err)
	}

	var line []byte
	var err error
	if fileutil.IsCompressed(c.path) {
		line, err = lastLineCompressed(c.path)
	} else {
		line, err = fileutil.TailLine(c.path)
	}
	if err != nil {
		return nil, err
	}

	footer, err := ParseFooter(c.path, line)
	if err != nil {
		return nil, err
	}
	c.footer = footer
	c.footerLoaded = true
	return footer, nil
}

// lastLineCompressed scans a compressed file for its final line; compressed
// streams cannot be tail-read by seeking.
func lastLineCompressed(path string) ([]byte, error) {
	rc, err := fileutil.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var last []byte
	br := bufio.NewReader(rc)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			trimmed := strings.TrimSuffix(string(line), "\n")
			if trimmed != "" {
				last = []byte(trimmed)
			}
		}
		if err == io.EOF {
			return last, nil
		}
		if err != nil {
			return nil, errors.NewIO("read", path, err)
		}
	}
}

// Languages returns the language directions recorded in the footer.
func (c *Corpus) Languages() ([]lang.Direction, error) {
	footer, err := c.Footer()
	if err != nil {
		return nil, err
	}
	if footer == nil {
		return nil, nil
	}
	return footer.Counter.Directions(), nil
}

// Len returns the total unit count recorded in the footer.
func (c *Corpus) Len() (int, error) {
	footer, err := c.Footer()
	if err != nil {
		return 0, err
	}
	if footer == nil {
		return 0, nil
	}
	return footer.Counter.Total(), nil
}

// Properties returns the corpus-level properties recorded in the footer.
func (c *Corpus) Properties() (*corpus.Properties, error) {
	footer, err := c.Footer()
	if err != nil {
		return nil, err
	}
	if footer == nil {
		return nil, nil
	}
	return footer.Properties, nil
}

// OpenReader opens a streaming reader over the corpus.
func (c *Corpus) OpenReader() (corpus.Reader, error) {
	r := NewReader(c.path)
	if err := r.Open(); err != nil {
		return nil, err
	}
	return r, nil
}

// OpenWriter opens a streaming writer over the corpus, seeding the new
// footer with any corpus-level properties of the existing file.
func (c *Corpus) OpenWriter() (corpus.Writer, error) {
	props, err := c.Properties()
	if err != nil && !errors.Is(err, errors.ErrMissingFooter) {
		return nil, err
	}

	w := NewWriter(c.path, WithProperties(props))
	if err := w.Open(); err != nil {
		return nil, err
	}
	c.footer = nil // a new writer invalidates the memoized summary
	c.footerLoaded = false
	return w, nil
}

// Link hard-links (or symlinks) the corpus file into destPath and returns a
// Corpus over the link.
func (c *Corpus) Link(destPath string, symbolic, overwrite bool) (*Corpus, error) {
	linked, err := fileutil.Link(c.path, destPath, symbolic, overwrite)
	if err != nil {
		return nil, err
	}
	return New(linked)
}

// Detect reports whether path names a JTM file.
func Detect(path string) bool {
	return strings.HasSuffix(strings.ToLower(fileutil.StripCompressionExt(path)), ".jtm")
}

func init() {
	corpus.RegisterFormat(corpus.Format{
		Name:   "jtm",
		Detect: Detect,
		Open: func(path string) (corpus.Corpus, error) {
			return New(path)
		},
	})
}
