package corpus

import (
	"testing"

	"github.com/bitextio/bitext/core/lang"
)

func TestUnitKeyIgnoresProperties(t *testing.T) {
	d, _ := lang.ParseDirection("en", "de")

	a := Unit{Language: d, Sentence: "hello", Translation: "hallo"}
	b := a
	b.Properties = NewProperties()
	b.Properties.Put("origin", "test")

	if !a.Equal(b) {
		t.Error("properties must not participate in unit identity")
	}
	if a.Key() != b.Key() {
		t.Error("keys of property-differing units must be equal")
	}

	c := a
	c.TUID = "t1"
	if a.Equal(c) {
		t.Error("tuid participates in identity")
	}
}

func TestUnitCopy(t *testing.T) {
	d, _ := lang.ParseDirection("en", "de")
	props := NewProperties()
	props.Put("k", "v")
	u := Unit{Language: d, Sentence: "a", Translation: "b", Properties: props}

	c := u.Copy()
	c.Properties.Put("k", "w")

	if u.Properties.IsList("k") {
		t.Error("copy shares Properties with the original")
	}

	plain := Unit{Language: d, Sentence: "a", Translation: "b"}
	if plain.Copy().Properties != nil {
		t.Error("copy of a unit without properties should keep nil")
	}
}

func TestUnitString(t *testing.T) {
	d, _ := lang.ParseDirection("en", "de")
	u := Unit{Language: d, Sentence: "hi", Translation: "hallo"}
	want := "[en→de] <hi> ||| <hallo>"
	if got := u.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
