package encoding

import (
	"io"
	"strings"
	"testing"
)

func TestValidXMLChar(t *testing.T) {
	valid := []rune{0x09, 0x0A, 0x0D, ' ', 'A', 0xD7FF, 0xE000, 0xFFFD, 0x10000, 0x29E3D, 0x10FFFF}
	for _, r := range valid {
		if !ValidXMLChar(r) {
			t.Errorf("ValidXMLChar(%#U) = false, want true", r)
		}
	}
	invalid := []rune{0x00, 0x08, 0x0B, 0x0C, 0x1F, 0xD800, 0xDFFF, 0xFFFE, 0xFFFF}
	for _, r := range invalid {
		if ValidXMLChar(r) {
			t.Errorf("ValidXMLChar(%#U) = true, want false", r)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "clean text untouched", input: "hello <b>world</b>", want: "hello <b>world</b>"},
		{name: "form feed blanked", input: "a\x0Cb", want: "a b"},
		{name: "control run blanked one for one", input: "a\x00\x08b", want: "a  b"},
		{name: "tab newline kept", input: "a\tb\nc\r", want: "a\tb\nc\r"},
		{name: "supplementary plane kept", input: "a\U00029E3Db", want: "a\U00029E3Db"},
		{name: "invalid hex ref blanked", input: "a&#x0C;b", want: "a b"},
		{name: "invalid hex ref uppercase digits", input: "a&#xFFFF;b", want: "a b"},
		{name: "valid hex ref kept verbatim", input: "a&#x29E3D;b", want: "a&#x29E3D;b"},
		{name: "entity references untouched", input: "a&amp;&lt;b", want: "a&amp;&lt;b"},
		{name: "decimal refs untouched", input: "a&#12;b", want: "a&#12;b"},
		{name: "bare ampersand untouched", input: "AT&T", want: "AT&T"},
		{name: "unterminated ref untouched", input: "a&#x0Cb", want: "a&#x0Cb"},
		{name: "overlong digit run untouched", input: "a&#x123456789;b", want: "a&#x123456789;b"},
		{name: "empty ref untouched", input: "a&#x;b", want: "a&#x;b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeString(tt.input); got != tt.want {
				t.Errorf("SanitizeString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizingReaderSmallBuffer(t *testing.T) {
	// Small read buffer forces the transformer through its short-src and
	// short-dst paths: references and multi-byte runes split across reads.
	input := "before\x0Cmiddle&#x0C;after&#x29E3D;end\U00029E3D!"
	want := "before middle after&#x29E3D;end\U00029E3D!"

	r := NewSanitizingReader(strings.NewReader(input))
	var out strings.Builder
	buf := make([]byte, 3)
	for {
		n, err := r.Read(buf)
		out.Write(buf[:n])
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
	}
	if out.String() != want {
		t.Errorf("sanitized = %q, want %q", out.String(), want)
	}
}

func TestSanitizeInvalidUTF8Dropped(t *testing.T) {
	input := "a\xFF\xFEb"
	if got := SanitizeString(input); got != "ab" {
		t.Errorf("SanitizeString(%q) = %q, want %q", input, got, "ab")
	}
}
