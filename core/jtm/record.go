// Package jtm implements the JTM line corpus format: one JSON record per
// line, terminated by a single ".footer" summary line that makes corpus
// metadata (per-direction counts, corpus properties) readable from the file
// tail without a scan.
package jtm

import (
	"encoding/json"

	"github.com/bitextio/bitext/core/corpus"
	"github.com/bitextio/bitext/core/lang"
)

// record is the wire form of one unit line. Field order is the on-disk key
// order; absent optional fields are omitted entirely.
type record struct {
	Language     lang.Direction     `json:"language"`
	Sentence     string             `json:"sentence"`
	Translation  string             `json:"translation"`
	TUID         string             `json:"tuid,omitempty"`
	CreationDate string             `json:"creationDate,omitempty"`
	ChangeDate   string             `json:"changeDate,omitempty"`
	Properties   *corpus.Properties `json:"properties,omitempty"`
}

// MarshalUnit encodes a unit as a single JSON line (without the newline).
func MarshalUnit(u corpus.Unit) ([]byte, error) {
	return json.Marshal(record{
		Language:     u.Language,
		Sentence:     u.Sentence,
		Translation:  u.Translation,
		TUID:         u.TUID,
		CreationDate: u.CreationDate,
		ChangeDate:   u.ChangeDate,
		Properties:   u.Properties,
	})
}

// UnmarshalUnit decodes a single JSON record line.
func UnmarshalUnit(line []byte) (corpus.Unit, error) {
	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		return corpus.Unit{}, err
	}
	return corpus.Unit{
		Language:     rec.Language,
		Sentence:     rec.Sentence,
		Translation:  rec.Translation,
		TUID:         rec.TUID,
		CreationDate: rec.CreationDate,
		ChangeDate:   rec.ChangeDate,
		Properties:   rec.Properties,
	}, nil
}
