package sqlite

import (
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/bitextio/bitext/core/corpus"
	bterrors "github.com/bitextio/bitext/core/errors"
	"github.com/bitextio/bitext/core/lang"
)

func mustDir(t *testing.T, src, tgt string) lang.Direction {
	t.Helper()
	d, err := lang.ParseDirection(src, tgt)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func writeUnits(t *testing.T, path string, units []corpus.Unit, opts ...WriterOption) {
	t.Helper()
	w := NewWriter(path, opts...)
	if err := w.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, u := range units {
		if err := w.Write(u); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.db")

	props := corpus.NewProperties()
	props.Put("checked", "yes")
	units := []corpus.Unit{
		{Language: mustDir(t, "en", "de"), Sentence: "hello", Translation: "hallo", TUID: "t1"},
		{Language: mustDir(t, "en", "de"), Sentence: "bye", Translation: "tschüss", CreationDate: "20240101T000000Z"},
		{Language: mustDir(t, "en", "fr"), Sentence: "hello", Translation: "salut", Properties: props},
	}
	writeUnits(t, path, units)

	c := New(path)
	if c.Name() != "corpus" {
		t.Errorf("Name = %q, want %q", c.Name(), "corpus")
	}

	r, err := c.OpenReader()
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()
	got, err := corpus.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != len(units) {
		t.Fatalf("read %d units, want %d", len(got), len(units))
	}
	for i := range units {
		if !got[i].Equal(units[i]) {
			t.Errorf("unit %d = %v, want %v", i, got[i], units[i])
		}
	}
	if !got[2].Properties.Equal(props) {
		t.Errorf("unit properties = %v", got[2].Properties)
	}
}

func TestLanguagesAndLen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.sqlite")
	writeUnits(t, path, []corpus.Unit{
		{Language: mustDir(t, "en", "de"), Sentence: "a", Translation: "b"},
		{Language: mustDir(t, "en", "fr"), Sentence: "c", Translation: "d"},
		{Language: mustDir(t, "en", "de"), Sentence: "e", Translation: "f"},
	})

	c := New(path)
	total, err := c.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if total != 3 {
		t.Errorf("Len = %d, want 3", total)
	}

	languages, err := c.Languages()
	if err != nil {
		t.Fatalf("Languages: %v", err)
	}
	want := []lang.Direction{mustDir(t, "en", "de"), mustDir(t, "en", "fr")}
	if len(languages) != 2 || languages[0] != want[0] || languages[1] != want[1] {
		t.Errorf("Languages = %v, want %v", languages, want)
	}
}

func TestCorpusProperties(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.db")

	w := NewWriter(path)
	if err := w.Open(); err != nil {
		t.Fatal(err)
	}
	w.AddProperty("origin", "import")
	w.AddProperty("origin", "manual")
	if err := w.Write(corpus.Unit{Language: mustDir(t, "en", "de"), Sentence: "a", Translation: "b"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	c := New(path)
	props, err := c.Properties()
	if err != nil {
		t.Fatalf("Properties: %v", err)
	}
	if got := props.GetAll("origin"); len(got) != 2 || got[0] != "import" {
		t.Errorf("origin = %v", got)
	}
}

func TestOpenWriterAppendsAndCarriesProperties(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.db")
	w := NewWriter(path)
	if err := w.Open(); err != nil {
		t.Fatal(err)
	}
	w.AddProperty("origin", "first")
	if err := w.Write(corpus.Unit{Language: mustDir(t, "en", "de"), Sentence: "a", Translation: "b"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	c := New(path)
	cw, err := c.OpenWriter()
	if err != nil {
		t.Fatalf("OpenWriter: %v", err)
	}
	if err := cw.Write(corpus.Unit{Language: mustDir(t, "en", "de"), Sentence: "c", Translation: "d"}); err != nil {
		t.Fatal(err)
	}
	if err := cw.Close(); err != nil {
		t.Fatal(err)
	}

	// Unlike the file formats, the database appends.
	c2 := New(path)
	if total, err := c2.Len(); err != nil || total != 2 {
		t.Errorf("Len = %d, %v; want 2", total, err)
	}
	props, err := c2.Properties()
	if err != nil {
		t.Fatalf("Properties: %v", err)
	}
	if v, _ := props.GetFirst("origin"); v != "first" {
		t.Errorf("origin = %q, want carried value", v)
	}
}

func TestEmptyDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	writeUnits(t, path, nil)

	c := New(path)
	if total, err := c.Len(); err != nil || total != 0 {
		t.Errorf("Len = %d, %v; want 0, nil", total, err)
	}
	if props, err := c.Properties(); err != nil || props != nil {
		t.Errorf("Properties = %v, %v; want nil, nil", props, err)
	}

	r, err := c.OpenReader()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("Next on empty database = %v, want io.EOF", err)
	}
}

func TestNotOpen(t *testing.T) {
	r := NewReader("x.db")
	if _, err := r.Next(); !errors.Is(err, bterrors.ErrNotOpen) {
		t.Errorf("Next before Open = %v, want ErrNotOpen", err)
	}
	w := NewWriter("x.db")
	if err := w.Write(corpus.Unit{}); !errors.Is(err, bterrors.ErrNotOpen) {
		t.Errorf("Write before Open = %v, want ErrNotOpen", err)
	}
}

func TestWriterCloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.db")
	w := NewWriter(path)
	if err := w.Open(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestDetectDB(t *testing.T) {
	for _, path := range []string{"c.db", "c.sqlite", "c.sqlite3", "C.DB"} {
		if !Detect(path) {
			t.Errorf("Detect(%q) = false", path)
		}
	}
	for _, path := range []string{"c.jtm", "c.tmx", "db.txt"} {
		if Detect(path) {
			t.Errorf("Detect(%q) = true", path)
		}
	}
}

func TestDriverSelected(t *testing.T) {
	if DriverName() == "" || DriverType() == "" {
		t.Error("driver name and type must be set by the build")
	}
}
