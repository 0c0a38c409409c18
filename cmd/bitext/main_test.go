package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bitextio/bitext/core/corpus"
	"github.com/bitextio/bitext/core/jtm"
	"github.com/bitextio/bitext/core/lang"
	"github.com/bitextio/bitext/core/tmx"
)

func createJTMCorpus(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "europarl.v7.en__de.jtm")
	d, err := lang.ParseDirection("en", "de")
	if err != nil {
		t.Fatal(err)
	}

	w := jtm.NewWriter(path)
	if err := w.Open(); err != nil {
		t.Fatalf("failed to open writer: %v", err)
	}
	w.AddProperty("origin", "test-fixture")
	units := []corpus.Unit{
		{Language: d, Sentence: "hello", Translation: "hallo"},
		{Language: d, Sentence: "bye", Translation: "tschüss"},
	}
	for _, u := range units {
		if err := w.Write(u); err != nil {
			t.Fatalf("failed to write unit: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return path
}

func TestInfoCmd(t *testing.T) {
	path := createJTMCorpus(t, t.TempDir())
	cmd := &InfoCmd{Path: path}
	if err := cmd.Run(); err != nil {
		t.Fatalf("info failed: %v", err)
	}

	if err := (&InfoCmd{Path: "no-such.1.en__de.jtm"}).Run(); err != nil {
		// A missing JTM file still has filename identity and an empty footer.
		t.Errorf("info on missing jtm: %v", err)
	}
}

func TestConvertCmdJTMToTMX(t *testing.T) {
	dir := t.TempDir()
	in := createJTMCorpus(t, dir)
	out := filepath.Join(dir, "out.tmx")

	cmd := &ConvertCmd{Input: in, Output: out}
	if err := cmd.Run(); err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	c := tmx.New(out)
	total, err := c.Len()
	if err != nil {
		t.Fatalf("reading converted corpus: %v", err)
	}
	if total != 2 {
		t.Errorf("converted corpus has %d units, want 2", total)
	}

	// Corpus properties survive the format change.
	props, err := c.Properties()
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := props.GetFirst("origin"); v != "test-fixture" {
		t.Errorf("origin = %q, want carried value", v)
	}
}

func TestConvertCmdToParallelPair(t *testing.T) {
	dir := t.TempDir()
	in := createJTMCorpus(t, dir)
	outSrc := filepath.Join(dir, "out.en")
	outTgt := filepath.Join(dir, "out.de")

	cmd := &ConvertCmd{Input: in, Output: outSrc, OutTarget: outTgt}
	if err := cmd.Run(); err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	srcData, err := os.ReadFile(outSrc)
	if err != nil {
		t.Fatal(err)
	}
	if string(srcData) != "hello\nbye\n" {
		t.Errorf("source side = %q", srcData)
	}
}

func TestConvertCmdAssignIDs(t *testing.T) {
	dir := t.TempDir()
	in := createJTMCorpus(t, dir)
	out := filepath.Join(dir, "copy.1.en__de.jtm")

	cmd := &ConvertCmd{Input: in, Output: out, AssignIDs: true}
	if err := cmd.Run(); err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	c, err := jtm.New(out)
	if err != nil {
		t.Fatal(err)
	}
	r, err := c.OpenReader()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	units, err := corpus.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	for i, u := range units {
		if u.TUID == "" {
			t.Errorf("unit %d has no assigned tuid", i)
		}
	}
}

func TestConvertCmdUnknownOutput(t *testing.T) {
	dir := t.TempDir()
	in := createJTMCorpus(t, dir)
	cmd := &ConvertCmd{Input: in, Output: filepath.Join(dir, "out.unknown")}
	if err := cmd.Run(); err == nil || !strings.Contains(err.Error(), "cannot infer") {
		t.Errorf("error = %v, want format inference failure", err)
	}
}

func TestHeadCmd(t *testing.T) {
	path := createJTMCorpus(t, t.TempDir())
	cmd := &HeadCmd{Path: path, Count: 1}
	if err := cmd.Run(); err != nil {
		t.Fatalf("head failed: %v", err)
	}
}

func TestHashCmd(t *testing.T) {
	path := createJTMCorpus(t, t.TempDir())
	cmd := &HashCmd{Path: path}
	if err := cmd.Run(); err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if err := (&HashCmd{Path: "missing-file"}).Run(); err == nil {
		t.Error("hash of missing file should fail")
	}
}

func TestTmxValidateCmd(t *testing.T) {
	dir := t.TempDir()
	in := createJTMCorpus(t, dir)
	out := filepath.Join(dir, "valid.tmx")
	if err := (&ConvertCmd{Input: in, Output: out}).Run(); err != nil {
		t.Fatal(err)
	}

	if err := (&TmxValidateCmd{Path: out}).Run(); err != nil {
		t.Errorf("validate on converter output: %v", err)
	}

	broken := filepath.Join(dir, "broken.tmx")
	if err := os.WriteFile(broken, []byte("<tmx><body></tmx>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := (&TmxValidateCmd{Path: broken}).Run(); err == nil {
		t.Error("validate should fail on markup that stays broken after sanitizing")
	}
}

func TestTmxInspectCmd(t *testing.T) {
	dir := t.TempDir()
	in := createJTMCorpus(t, dir)
	out := filepath.Join(dir, "inspect.tmx")
	if err := (&ConvertCmd{Input: in, Output: out}).Run(); err != nil {
		t.Fatal(err)
	}

	if err := (&TmxInspectCmd{Path: out, XPath: "//tu", Count: true}).Run(); err != nil {
		t.Errorf("inspect failed: %v", err)
	}
	if err := (&TmxInspectCmd{Path: out, XPath: "///"}).Run(); err == nil {
		t.Error("invalid xpath should fail")
	}
}

func TestVersionCmd(t *testing.T) {
	if err := (&VersionCmd{}).Run(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
}
