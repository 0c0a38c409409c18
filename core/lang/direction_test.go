package lang

import (
	"encoding/json"
	"testing"
)

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("en_us", "de")
	if err != nil {
		t.Fatalf("ParseDirection: %v", err)
	}
	if d.Source != MustParse("en-US") || d.Target != MustParse("de") {
		t.Errorf("got %v, want en-US→de", d)
	}
	if got := d.String(); got != "en-US→de" {
		t.Errorf("String() = %q, want %q", got, "en-US→de")
	}

	if _, err := ParseDirection("x", "de"); err == nil {
		t.Error("expected error for invalid source tag")
	}
	if _, err := ParseDirection("en", ""); err == nil {
		t.Error("expected error for empty target tag")
	}
}

func TestDirectionReversed(t *testing.T) {
	d, _ := ParseDirection("en", "fr")
	r := d.Reversed()
	if r.Source != MustParse("fr") || r.Target != MustParse("en") {
		t.Errorf("Reversed() = %v, want fr→en", r)
	}
	if r.Reversed() != d {
		t.Error("double reversal must restore the original direction")
	}
}

func TestDirectionGenerality(t *testing.T) {
	general, _ := ParseDirection("en", "de")
	specific, _ := ParseDirection("en-US", "de-AT")
	if !general.IsEqualOrMoreGeneralThan(specific) {
		t.Error("en→de should generalize en-US→de-AT")
	}
	if specific.IsEqualOrMoreGeneralThan(general) {
		t.Error("en-US→de-AT must not generalize en→de")
	}

	mixed, _ := ParseDirection("en", "fr")
	if mixed.IsEqualOrMoreGeneralThan(specific) {
		t.Error("generality must hold on both components")
	}
}

func TestDirectionJSON(t *testing.T) {
	d, _ := ParseDirection("en-US", "zh-Hant")
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `["en-US","zh-Hant"]` {
		t.Errorf("Marshal = %s", data)
	}

	var back Direction
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != d {
		t.Errorf("round trip = %v, want %v", back, d)
	}

	for _, bad := range []string{`["en"]`, `["en","de","fr"]`, `["","de"]`, `"en-de"`} {
		if err := json.Unmarshal([]byte(bad), &back); err == nil {
			t.Errorf("Unmarshal(%s) should fail", bad)
		}
	}
}
