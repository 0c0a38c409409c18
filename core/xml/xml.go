// Package xml provides DOM-level XML tooling for corpus inspection:
// well-formedness validation and XPath queries over TMX documents. The
// streaming record path lives in core/tmx; this package serves the CLI and
// diagnostics, where loading a document (or a bounded prefix of one) is
// acceptable.
package xml

import (
	"bytes"
	stdxml "encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/bitextio/bitext/core/encoding"
)

// Document represents a parsed XML document.
type Document struct {
	root *xmlquery.Node
}

// Node represents an XML element node.
type Node struct {
	node *xmlquery.Node
}

// ValidationResult contains the result of XML validation.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// ValidationError represents a single validation error.
type ValidationError struct {
	Offset  int64
	Message string
}

// Parse parses XML data and returns a Document. Input passes through the
// corpus sanitizer first, matching what the streaming reader would accept.
func Parse(data []byte) (*Document, error) {
	root, err := xmlquery.Parse(encoding.NewSanitizingReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseFile parses the XML file at path.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Validate checks raw (unsanitized) XML data for well-formedness.
//
// Entity expansion is disabled, so external or internal entity tricks cannot
// smuggle content past validation.
func Validate(r io.Reader) ValidationResult {
	result := ValidationResult{Valid: true}

	decoder := stdxml.NewDecoder(r)
	decoder.Entity = map[string]string{}

	for {
		_, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Offset:  decoder.InputOffset(),
				Message: err.Error(),
			})
			break
		}
	}

	return result
}

// ValidateFile checks the file at path for well-formedness, reporting both
// the raw verdict and the verdict after sanitization. A file that is valid
// only when sanitized is readable by the streaming corpus reader but not by
// a strict XML consumer.
func ValidateFile(path string) (raw, sanitized ValidationResult, err error) {
	f, err := os.Open(path)
	if err != nil {
		return raw, sanitized, err
	}
	raw = Validate(f)
	f.Close()

	f, err = os.Open(path)
	if err != nil {
		return raw, sanitized, err
	}
	defer f.Close()
	sanitized = Validate(encoding.NewSanitizingReader(f))
	return raw, sanitized, nil
}

// Root returns the root element of the document.
func (d *Document) Root() *Node {
	if d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Node{node: child}
		}
	}
	return nil
}

// XPath executes an XPath query and returns matching nodes.
func (d *Document) XPath(expr string) ([]*Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}

	nodes, err := xmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}

	result := make([]*Node, len(nodes))
	for i, n := range nodes {
		result[i] = &Node{node: n}
	}
	return result, nil
}

// XPathFirst executes an XPath query and returns the first match, or nil.
func (d *Document) XPathFirst(expr string) (*Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}

	node, err := xmlquery.Query(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}
	if node == nil {
		return nil, nil
	}
	return &Node{node: node}, nil
}

// CountEntries returns the number of <tu> entries in a TMX document.
func (d *Document) CountEntries() (int, error) {
	nodes, err := d.XPath("//tu")
	if err != nil {
		return 0, err
	}
	return len(nodes), nil
}

// Name returns the element name.
func (n *Node) Name() string {
	if n.node == nil {
		return ""
	}
	return n.node.Data
}

// InnerText returns all text content of the node and its descendants.
func (n *Node) InnerText() string {
	if n.node == nil {
		return ""
	}
	return n.node.InnerText()
}

// OutputXML renders the node subtree as XML.
func (n *Node) OutputXML() string {
	if n.node == nil {
		return ""
	}
	return n.node.OutputXML(true)
}

// Attr returns the value of a specific attribute.
func (n *Node) Attr(name string) string {
	if n.node == nil {
		return ""
	}
	return n.node.SelectAttr(name)
}

// Children returns the child element nodes.
func (n *Node) Children() []*Node {
	if n.node == nil {
		return nil
	}

	var children []*Node
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			children = append(children, &Node{node: child})
		}
	}
	return children
}
