package corpus

import (
	"fmt"

	"github.com/bitextio/bitext/core/lang"
)

// Unit is one aligned translation record: a sentence and its translation
// under a language direction, with optional identity, opaque timestamp
// strings, and optional metadata. Units are value objects and are never
// mutated after construction.
type Unit struct {
	Language     lang.Direction
	Sentence     string
	Translation  string
	TUID         string
	CreationDate string
	ChangeDate   string
	Properties   *Properties
}

// UnitKey is the comparable identity of a Unit. Metadata properties do not
// participate in identity.
type UnitKey struct {
	Language     lang.Direction
	Sentence     string
	Translation  string
	TUID         string
	CreationDate string
	ChangeDate   string
}

// Key returns the comparable identity of u, usable as a map key.
func (u Unit) Key() UnitKey {
	return UnitKey{
		Language:     u.Language,
		Sentence:     u.Sentence,
		Translation:  u.Translation,
		TUID:         u.TUID,
		CreationDate: u.CreationDate,
		ChangeDate:   u.ChangeDate,
	}
}

// Equal reports identity equality, ignoring Properties.
func (u Unit) Equal(other Unit) bool {
	return u.Key() == other.Key()
}

// Copy returns a deep copy of u, including its Properties.
func (u Unit) Copy() Unit {
	c := u
	if u.Properties != nil {
		c.Properties = CopyProperties(u.Properties)
	}
	return c
}

// String renders the unit for diagnostics.
func (u Unit) String() string {
	return fmt.Sprintf("[%s] <%s> ||| <%s>", u.Language, u.Sentence, u.Translation)
}
