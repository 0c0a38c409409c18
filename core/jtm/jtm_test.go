package jtm

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	bterrors "github.com/bitextio/bitext/core/errors"
	"github.com/bitextio/bitext/core/lang"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		datasource string
		id         string
		direction  string
	}{
		{
			name:       "plain",
			path:       "/data/europarl.v7.en__de.jtm",
			datasource: "europarl",
			id:         "v7",
			direction:  "en→de",
		},
		{
			name:       "datasource lowercased",
			path:       "ParaCrawl.9.en_us__fr.jtm",
			datasource: "paracrawl",
			id:         "9",
			direction:  "en-US→fr",
		},
		{
			name:       "gzip suffix",
			path:       "books.1.de__it.jtm.gz",
			datasource: "books",
			id:         "1",
			direction:  "de→it",
		},
		{
			name:       "xz suffix",
			path:       "books.1.de__it.jtm.xz",
			datasource: "books",
			id:         "1",
			direction:  "de→it",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.path)
			if err != nil {
				t.Fatalf("New(%q): %v", tt.path, err)
			}
			if c.DatasourceKey() != tt.datasource {
				t.Errorf("DatasourceKey = %q, want %q", c.DatasourceKey(), tt.datasource)
			}
			if c.ID() != tt.id {
				t.Errorf("ID = %q, want %q", c.ID(), tt.id)
			}
			if c.Direction().String() != tt.direction {
				t.Errorf("Direction = %q, want %q", c.Direction(), tt.direction)
			}
		})
	}
}

func TestNewRejectsBadFilenames(t *testing.T) {
	bad := []string{
		"corpus.jtm",              // too few parts
		"ds.id.en-de.jtm",         // no language separator
		"ds.id.en__x!.jtm",        // unparsable target tag
		"ds.id.__de.jtm",          // empty source tag
	}
	for _, path := range bad {
		t.Run(path, func(t *testing.T) {
			if _, err := New(path); !errors.Is(err, bterrors.ErrInvalidFilename) {
				t.Errorf("New(%q) error = %v, want ErrInvalidFilename", path, err)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{path: "a.b.en__de.jtm", want: true},
		{path: "a.b.en__de.jtm.gz", want: true},
		{path: "a.b.en__de.jtm.xz", want: true},
		{path: "a.b.en__de.JTM", want: true},
		{path: "a.b.en__de.tmx", want: false},
		{path: "a.jtm.txt", want: false},
	}
	for _, tt := range tests {
		if got := Detect(tt.path); got != tt.want {
			t.Errorf("Detect(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"europarl.v7.en__de.jtm",
		"books.1.fr__it.jtm.gz",
		"notes.txt",
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.dir.en__de.jtm"), 0o755); err != nil {
		t.Fatal(err)
	}

	corpora, err := List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(corpora) != 2 {
		t.Fatalf("List found %d corpora, want 2", len(corpora))
	}

	if _, err := List(filepath.Join(dir, "absent")); err == nil {
		t.Error("List of a missing directory should fail")
	}
}

func TestLink(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "europarl.v7.en__de.jtm")
	if err := os.WriteFile(src, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := New(src)
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out")
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatal(err)
	}
	linked, err := c.Link(out, false, false)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if linked.Direction() != c.Direction() {
		t.Errorf("linked direction = %v, want %v", linked.Direction(), c.Direction())
	}
	if linked.Path() == c.Path() {
		t.Error("link should live at the destination")
	}
}

func mustDir(t *testing.T, src, tgt string) lang.Direction {
	t.Helper()
	d, err := lang.ParseDirection(src, tgt)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
