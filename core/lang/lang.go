// Package lang models language tags and bilingual language directions.
//
// A Tag is a canonicalized identifier of the form primary[-script][-region],
// optionally followed by verbatim trailing subtags (e.g. "en-US", "zh-Hant",
// "sr-Latn-RS-x-dialect"). Tags are small comparable values: equality and map
// identity are defined solely by the canonical form.
package lang

import (
	"strings"

	"github.com/bitextio/bitext/core/errors"
)

// Tag is a parsed, canonicalized language tag. The zero value is invalid;
// construct tags with Parse or MustParse.
type Tag struct {
	primary   string
	script    string
	region    string
	canonical string
}

// Parse parses a free-form language tag string ("en_US", "zh-Hant-TW", ...).
// The leading subtag is mandatory and must be 2-3 ASCII letters; script and
// region subtags are recognized positionally, and the first unrecognized
// subtag stops recognition permanently, with all remaining subtags kept
// verbatim in the canonical form.
func Parse(text string) (Tag, error) {
	if text == "" {
		return Tag{}, errors.NewTag(text, "", "empty string")
	}

	var t Tag
	var parts []string

	skip := false
	chunks := strings.Split(strings.ReplaceAll(text, "_", "-"), "-")
	for i, chunk := range chunks {
		if i == 0 {
			primary, ok := parsePrimary(chunk)
			if !ok {
				return Tag{}, errors.NewTag(text, chunk, "primary subtag must be 2-3 letters")
			}
			t.primary = primary
			parts = append(parts, primary)
			continue
		}

		if !skip {
			if i == 1 && t.script == "" {
				if script, ok := parseScript(chunk); ok {
					t.script = script
					parts = append(parts, script)
					continue
				}
			}
			if i <= 2 && t.region == "" {
				if region, ok := parseRegion(chunk); ok {
					t.region = region
					parts = append(parts, region)
					continue
				}
			}
		}

		skip = true
		parts = append(parts, chunk)
	}

	t.canonical = strings.Join(parts, "-")
	return t, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(text string) Tag {
	t, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return t
}

func parsePrimary(s string) (string, bool) {
	if (len(s) == 2 || len(s) == 3) && isAlpha(s) {
		return strings.ToLower(s), true
	}
	return "", false
}

func parseScript(s string) (string, bool) {
	if len(s) == 4 && isAlpha(s) {
		return strings.ToUpper(s[:1]) + strings.ToLower(s[1:]), true
	}
	return "", false
}

func parseRegion(s string) (string, bool) {
	if len(s) == 2 && isAlpha(s) {
		return strings.ToUpper(s), true
	}
	if len(s) == 3 && isDigit(s) {
		return s, true
	}
	return "", false
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}

func isDigit(s string) bool {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Primary returns the lowercase primary language subtag.
func (t Tag) Primary() string { return t.primary }

// Script returns the title-cased script subtag, or "" if absent.
func (t Tag) Script() string { return t.script }

// Region returns the uppercase or numeric region subtag, or "" if absent.
func (t Tag) Region() string { return t.region }

// String returns the canonical tag. Reparsing it yields an equal Tag.
func (t Tag) String() string { return t.canonical }

// IsZero reports whether t is the zero (unparsed) tag.
func (t Tag) IsZero() bool { return t.canonical == "" }

// IsPrimaryOnly reports whether the canonical tag consists of the primary
// subtag alone.
func (t Tag) IsPrimaryOnly() bool { return t.canonical == t.primary }

// PrimaryOnly returns a tag holding only the primary subtag.
func (t Tag) PrimaryOnly() Tag {
	if t.IsPrimaryOnly() {
		return t
	}
	return Tag{primary: t.primary, canonical: t.primary}
}

// IsEqualOrMoreGeneralThan reports whether t matches other while being at
// most as specific: the primary subtags must be equal, and t's script and
// region, where present, must equal other's. A tag with no script or region
// is more general than any tag sharing its primary subtag. The relation is a
// non-symmetric partial order.
func (t Tag) IsEqualOrMoreGeneralThan(other Tag) bool {
	if t.primary != other.primary {
		return false
	}
	if t.script != "" && t.script != other.script {
		return false
	}
	if t.region != "" && t.region != other.region {
		return false
	}
	return true
}
