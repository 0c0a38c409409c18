package jtm

import (
	"bytes"
	"encoding/json"

	"github.com/bitextio/bitext/core/corpus"
	"github.com/bitextio/bitext/core/errors"
)

// FooterPrefix marks the summary line terminating a JTM file.
const FooterPrefix = ".footer"

// Footer is the corpus summary appended as the last line of a JTM file:
// per-direction unit counts plus optional corpus-level properties.
type Footer struct {
	Counter    *corpus.Counter
	Properties *corpus.Properties
}

type footerWire struct {
	Counter    *corpus.Counter    `json:"counter"`
	Properties *corpus.Properties `json:"properties,omitempty"`
}

// NewFooter returns an empty footer.
func NewFooter() *Footer {
	return &Footer{Counter: corpus.NewCounter()}
}

// ParseFooter parses a footer line. The line must start with FooterPrefix.
func ParseFooter(path string, line []byte) (*Footer, error) {
	if !bytes.HasPrefix(line, []byte(FooterPrefix)) {
		return nil, errors.NewFooter(path, "last line does not start with the '.footer' prefix")
	}

	var wire footerWire
	if err := json.Unmarshal(bytes.TrimSpace(line[len(FooterPrefix):]), &wire); err != nil {
		return nil, &errors.FooterError{Path: path, Message: "unparsable footer payload", Err: err}
	}

	f := &Footer{Counter: wire.Counter, Properties: wire.Properties}
	if f.Counter == nil {
		f.Counter = corpus.NewCounter()
	}
	return f, nil
}

// MarshalLine encodes the footer as its on-disk line (without the newline).
func (f *Footer) MarshalLine() ([]byte, error) {
	wire := footerWire{Counter: f.Counter}
	if f.Properties.Size() > 0 {
		wire.Properties = f.Properties
	}
	payload, err := json.Marshal(wire)
	if err != nil {
		return nil, err
	}
	return append([]byte(FooterPrefix), payload...), nil
}
