package encoding

import (
	"io"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// ValidXMLChar reports whether r is in the XML 1.0 character set:
// tab, CR, LF, U+0020–U+D7FF, U+E000–U+FFFD, U+10000–U+10FFFF.
func ValidXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}

// Sanitizer is a transform.Transformer that makes raw input safe to feed to
// an XML parser: characters outside the XML character set are blanked to a
// single space, and a
// hexadecimal numeric character reference (&#xHH..;) encoding a disallowed
// code point is rewritten to a single space so the surrounding markup stays
// well-formed. It operates incrementally and never buffers the document.
type Sanitizer struct {
	transform.NopResetter
}

// NewSanitizingReader wraps r so all bytes read through it are sanitized.
func NewSanitizingReader(r io.Reader) io.Reader {
	return transform.NewReader(r, Sanitizer{})
}

// SanitizeString sanitizes a complete string in memory.
func SanitizeString(s string) string {
	out, _, err := transform.String(Sanitizer{}, s)
	if err != nil {
		// The transformer only ever reports Err{ShortSrc,ShortDst}, which
		// transform.String resolves internally.
		return s
	}
	return out
}

// Hex references longer than this cannot encode a valid code point, so a
// longer digit run is treated as ordinary text.
const maxRefDigits = 8

type refStatus int

const (
	refNone refStatus = iota // not a character reference, copy '&' through
	refShort                 // possibly a reference, need more input
	refKeep                  // valid reference, copy verbatim
	refBlank                 // reference to a disallowed code point, emit a space
)

// scanCharRef inspects src, which starts with '&', for a hexadecimal
// character reference. Returns the reference length for refKeep/refBlank.
func scanCharRef(src []byte, atEOF bool) (int, refStatus) {
	const prefix = "&#x"
	for i := 0; i < len(prefix); i++ {
		if i >= len(src) {
			if atEOF {
				return 0, refNone
			}
			return 0, refShort
		}
		if src[i] != prefix[i] {
			return 0, refNone
		}
	}

	digits := 0
	for i := len(prefix); i < len(src); i++ {
		c := src[i]
		switch {
		case c == ';':
			if digits == 0 {
				return 0, refNone
			}
			code, err := strconv.ParseInt(string(src[len(prefix):i]), 16, 32)
			if err != nil || !ValidXMLChar(rune(code)) {
				return i + 1, refBlank
			}
			return i + 1, refKeep
		case isHexDigit(c):
			digits++
			if digits > maxRefDigits {
				return 0, refNone
			}
		default:
			return 0, refNone
		}
	}
	if atEOF {
		return 0, refNone
	}
	return 0, refShort
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

// Transform implements transform.Transformer.
func (Sanitizer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		if src[nSrc] == '&' {
			size, status := scanCharRef(src[nSrc:], atEOF)
			switch status {
			case refShort:
				return nDst, nSrc, transform.ErrShortSrc
			case refBlank:
				if nDst >= len(dst) {
					return nDst, nSrc, transform.ErrShortDst
				}
				dst[nDst] = ' '
				nDst++
				nSrc += size
				continue
			case refKeep:
				if nDst+size > len(dst) {
					return nDst, nSrc, transform.ErrShortDst
				}
				copy(dst[nDst:], src[nSrc:nSrc+size])
				nDst += size
				nSrc += size
				continue
			}
			// refNone: the ampersand is ordinary text.
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = '&'
			nDst++
			nSrc++
			continue
		}

		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size == 1 {
			if !atEOF && !utf8.FullRune(src[nSrc:]) {
				return nDst, nSrc, transform.ErrShortSrc
			}
			// Invalid byte sequence: drop the byte.
			nSrc++
			continue
		}
		if !ValidXMLChar(r) {
			// Blank rather than drop, so a disallowed raw character and a
			// disallowed character reference degrade the same way.
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = ' '
			nDst++
			nSrc += size
			continue
		}
		if nDst+size > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		copy(dst[nDst:], src[nSrc:nSrc+size])
		nDst += size
		nSrc += size
	}
	return nDst, nSrc, nil
}
