package lang

import (
	"encoding/json"
	"fmt"

	"github.com/bitextio/bitext/core/errors"
)

// Direction is an ordered (source, target) pair of language tags. It is a
// comparable value: equality and map identity are defined by the pair.
type Direction struct {
	Source Tag
	Target Tag
}

// NewDirection builds a Direction from two parsed tags.
func NewDirection(source, target Tag) Direction {
	return Direction{Source: source, Target: target}
}

// ParseDirection parses a (source, target) pair of tag strings.
func ParseDirection(source, target string) (Direction, error) {
	src, err := Parse(source)
	if err != nil {
		return Direction{}, err
	}
	tgt, err := Parse(target)
	if err != nil {
		return Direction{}, err
	}
	return Direction{Source: src, Target: tgt}, nil
}

// Reversed returns the direction with source and target swapped.
func (d Direction) Reversed() Direction {
	return Direction{Source: d.Target, Target: d.Source}
}

// IsEqualOrMoreGeneralThan reports whether both components of d are equal to
// or more general than the corresponding components of other.
func (d Direction) IsEqualOrMoreGeneralThan(other Direction) bool {
	return d.Source.IsEqualOrMoreGeneralThan(other.Source) &&
		d.Target.IsEqualOrMoreGeneralThan(other.Target)
}

// String renders the direction as "src→tgt".
func (d Direction) String() string {
	return fmt.Sprintf("%s→%s", d.Source, d.Target)
}

// MarshalJSON encodes the direction as a 2-element tag-string array.
func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{d.Source.String(), d.Target.String()})
}

// UnmarshalJSON decodes a 2-element tag-string array.
func (d *Direction) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return errors.NewTag(string(data), "", fmt.Sprintf("language pair must contain two elements, got %d", len(pair)))
	}
	parsed, err := ParseDirection(pair[0], pair[1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
