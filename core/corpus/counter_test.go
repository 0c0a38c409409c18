package corpus

import (
	"encoding/json"
	"testing"

	"github.com/bitextio/bitext/core/lang"
)

func dir(t *testing.T, src, tgt string) lang.Direction {
	t.Helper()
	d, err := lang.ParseDirection(src, tgt)
	if err != nil {
		t.Fatalf("ParseDirection(%q, %q): %v", src, tgt, err)
	}
	return d
}

func TestCounter(t *testing.T) {
	c := NewCounter()
	enDe := dir(t, "en", "de")
	enFr := dir(t, "en", "fr")

	c.Count(enDe)
	c.Count(enFr)
	c.Add(enDe, 2)

	if got := c.Get(enDe); got != 3 {
		t.Errorf("Get(en→de) = %d, want 3", got)
	}
	if got := c.Get(enFr); got != 1 {
		t.Errorf("Get(en→fr) = %d, want 1", got)
	}
	if got := c.Get(dir(t, "de", "en")); got != 0 {
		t.Errorf("Get(unseen) = %d, want 0", got)
	}
	if got := c.Total(); got != 4 {
		t.Errorf("Total = %d, want 4", got)
	}
	if got := c.Len(); got != 2 {
		t.Errorf("Len = %d, want 2", got)
	}
	got := c.Directions()
	if len(got) != 2 || got[0] != enDe || got[1] != enFr {
		t.Errorf("Directions = %v, want [%v %v]", got, enDe, enFr)
	}
}

func TestCounterJSON(t *testing.T) {
	c := NewCounter()
	c.Add(dir(t, "en", "de"), 5)
	c.Add(dir(t, "en-US", "fr"), 1)

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `[[["en","de"],5],[["en-US","fr"],1]]`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var back Counter
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Get(dir(t, "en", "de")) != 5 || back.Get(dir(t, "en-US", "fr")) != 1 {
		t.Errorf("round trip lost counts: %v", back.counts)
	}
	wantDirs, gotDirs := c.Directions(), back.Directions()
	if len(gotDirs) != len(wantDirs) {
		t.Fatalf("Directions = %v, want %v", gotDirs, wantDirs)
	}
	for i := range wantDirs {
		if gotDirs[i] != wantDirs[i] {
			t.Errorf("direction order lost: %v, want %v", gotDirs, wantDirs)
			break
		}
	}
}

func TestCounterJSONEmpty(t *testing.T) {
	data, err := json.Marshal(NewCounter())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("Marshal empty = %s, want []", data)
	}

	var back Counter
	if err := json.Unmarshal([]byte("[]"), &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Len() != 0 {
		t.Errorf("Len = %d, want 0", back.Len())
	}
}
