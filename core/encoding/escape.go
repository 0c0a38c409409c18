// Package encoding provides shared text escaping and sanitization utilities
// for the XML corpus backends.
package encoding

import "strings"

// EscapeXMLText escapes the basic XML entities for element text content.
// Line breaks and other whitespace pass through verbatim.
func EscapeXMLText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// EscapeXMLAttr escapes text for use in XML attribute values.
// Includes quote escaping in addition to the basic XML entities.
func EscapeXMLAttr(s string) string {
	s = EscapeXMLText(s)
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}
