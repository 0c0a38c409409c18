// Package corpus defines the translation-memory data model shared by all
// corpus backends: the Properties multimap, the Unit record, the per-direction
// Counter, and the Corpus/Reader/Writer contracts.
package corpus

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"
)

// Properties is an ordered string-keyed multimap used for corpus-level and
// unit-level metadata. A key holds a single value until a repeated Put
// promotes it to an ordered list. Single value and one-element list are
// distinct shapes: equality is structural.
type Properties struct {
	keys   []string
	values map[string]propValue
}

type propValue struct {
	single string
	list   []string
	isList bool
}

// NewProperties returns an empty Properties.
func NewProperties() *Properties {
	return &Properties{values: make(map[string]propValue)}
}

// CopyProperties deep-copies other, so later mutation is not shared.
// A nil input yields an empty Properties.
func CopyProperties(other *Properties) *Properties {
	p := NewProperties()
	if other == nil {
		return p
	}
	for _, key := range other.keys {
		v := other.values[key]
		if v.isList {
			p.setList(key, v.list)
		} else {
			p.Set(key, v.single)
		}
	}
	return p
}

// Put appends value under key: absent keys get a single value, a second Put
// promotes to a 2-element list, further Puts append.
func (p *Properties) Put(key, value string) {
	existing, ok := p.values[key]
	switch {
	case !ok:
		p.keys = append(p.keys, key)
		p.values[key] = propValue{single: value}
	case existing.isList:
		existing.list = append(existing.list, value)
		p.values[key] = existing
	default:
		p.values[key] = propValue{list: []string{existing.single, value}, isList: true}
	}
}

// Set replaces any existing value of key with a single value.
func (p *Properties) Set(key, value string) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = propValue{single: value}
}

func (p *Properties) setList(key string, values []string) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = propValue{list: append([]string(nil), values...), isList: true}
}

// Has reports whether key is present.
func (p *Properties) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// GetFirst returns the single value or the first list element of key.
func (p *Properties) GetFirst(key string) (string, bool) {
	v, ok := p.values[key]
	if !ok {
		return "", false
	}
	if v.isList {
		return v.list[0], true
	}
	return v.single, true
}

// GetAll returns a copy of all values of key (a singleton slice for a single
// value), or nil if absent.
func (p *Properties) GetAll(key string) []string {
	v, ok := p.values[key]
	if !ok {
		return nil
	}
	if v.isList {
		return append([]string(nil), v.list...)
	}
	return []string{v.single}
}

// IsList reports whether key currently holds a list shape.
func (p *Properties) IsList(key string) bool {
	v, ok := p.values[key]
	return ok && v.isList
}

// Remove deletes key if present.
func (p *Properties) Remove(key string) {
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// Size returns the number of keys.
func (p *Properties) Size() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Keys returns the keys in insertion order.
func (p *Properties) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Equal reports structural equality: same keys, same value shapes, same
// value order within a key. Key insertion order does not matter.
func (p *Properties) Equal(other *Properties) bool {
	if p.Size() != other.Size() {
		return false
	}
	if p == nil || other == nil {
		return p.Size() == other.Size()
	}
	for key, v := range p.values {
		ov, ok := other.values[key]
		if !ok || v.isList != ov.isList {
			return false
		}
		if v.isList {
			if len(v.list) != len(ov.list) {
				return false
			}
			for i := range v.list {
				if v.list[i] != ov.list[i] {
					return false
				}
			}
		} else if v.single != ov.single {
			return false
		}
	}
	return true
}

// Hash returns a digest that is independent of key insertion order but
// sensitive to value order within a key and to value shape.
func (p *Properties) Hash() uint64 {
	if p == nil {
		return 0
	}
	keys := append([]string(nil), p.keys...)
	sort.Strings(keys)

	h := blake3.New()
	var buf bytes.Buffer
	for _, key := range keys {
		v := p.values[key]
		buf.Reset()
		buf.WriteString(key)
		buf.WriteByte(0)
		if v.isList {
			buf.WriteByte('L')
			for _, item := range v.list {
				buf.WriteString(item)
				buf.WriteByte(0)
			}
		} else {
			buf.WriteByte('S')
			buf.WriteString(v.single)
			buf.WriteByte(0)
		}
		h.Write(buf.Bytes())
	}
	return binary.BigEndian.Uint64(h.Sum(nil)[:8])
}

// String renders the map for diagnostics.
func (p *Properties) String() string {
	if p == nil {
		return "{}"
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range p.keys {
		if i > 0 {
			buf.WriteString(", ")
		}
		v := p.values[key]
		if v.isList {
			fmt.Fprintf(&buf, "%s: %v", key, v.list)
		} else {
			fmt.Fprintf(&buf, "%s: %s", key, v.single)
		}
	}
	buf.WriteByte('}')
	return buf.String()
}

// MarshalJSON encodes the map as a JSON object in key insertion order, with
// string values for single shapes and string arrays for list shapes.
func (p *Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')

		v := p.values[key]
		var valJSON []byte
		if v.isList {
			valJSON, err = json.Marshal(v.list)
		} else {
			valJSON, err = json.Marshal(v.single)
		}
		if err != nil {
			return nil, err
		}
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving key order and value shape.
func (p *Properties) UnmarshalJSON(data []byte) error {
	p.keys = nil
	p.values = make(map[string]propValue)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("properties: expected JSON object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if len(raw) > 0 && raw[0] == '[' {
			var list []string
			if err := json.Unmarshal(raw, &list); err != nil {
				return err
			}
			p.setList(key, list)
		} else {
			var single string
			if err := json.Unmarshal(raw, &single); err != nil {
				return err
			}
			p.Set(key, single)
		}
	}

	_, err = dec.Token() // closing brace
	return err
}
