// Package diagram loads SVG diagram documents, binds named regions to domain
// entities, applies status styling and synthesized labels, and manages the
// interaction listener lifecycle.
//
// The document is held as a parsed tree of typed nodes rather than a live
// DOM, with an explicit render-to-SVG step; the region resolution, binding
// and labeling behavior is target-agnostic.
package diagram

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoRoot is returned when the fetched text contains no root <svg> element.
var ErrNoRoot = errors.New("no svg root element found")

// Node is one element of a diagram document. Attributes and children are kept
// verbatim so that untouched parts of the document round-trip unchanged.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []*Node    `xml:",any"`
	Text     string     `xml:",chardata"`
}

// Document is a parsed diagram with an <svg> root.
type Document struct {
	Root *Node
}

// Parse decodes SVG text into a Document. The root element must be <svg>.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	// Diagram exports frequently carry entity refs and odd charsets.
	dec.Strict = false
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }

	var root Node
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("parse diagram: %w", err)
	}
	if !strings.EqualFold(root.XMLName.Local, "svg") {
		return nil, ErrNoRoot
	}
	return &Document{Root: &root}, nil
}

// Render serializes the document back to SVG text.
func (d *Document) Render() (string, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	if err := enc.Encode(d.Root); err != nil {
		return "", fmt.Errorf("render diagram: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FindByID walks the tree depth-first for the element with the given id.
func (d *Document) FindByID(id string) *Node {
	if id == "" {
		return nil
	}
	var found *Node
	d.Root.Walk(func(n *Node) bool {
		if n.Attr("id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Walk visits n and its descendants until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Attr returns the value of the named attribute, or "".
func (n *Node) Attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// SetAttr sets or replaces the named attribute.
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.Attrs {
		if a.Name.Local == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

// Style merges one property into the node's inline style attribute.
func (n *Node) Style(prop, value string) {
	style := n.Attr("style")
	var parts []string
	for _, p := range strings.Split(style, ";") {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, prop+":") {
			continue
		}
		parts = append(parts, p)
	}
	parts = append(parts, prop+": "+value)
	n.SetAttr("style", strings.Join(parts, "; "))
}

// StyleValue reads one property back out of the inline style attribute.
func (n *Node) StyleValue(prop string) string {
	for _, p := range strings.Split(n.Attr("style"), ";") {
		p = strings.TrimSpace(p)
		if v, ok := strings.CutPrefix(p, prop+":"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

var shapeKinds = map[string]bool{
	"path":     true,
	"rect":     true,
	"polygon":  true,
	"circle":   true,
	"ellipse":  true,
	"polyline": true,
}

// IsShape reports whether the node is a graphical sub-element eligible for
// dimming and region binding.
func (n *Node) IsShape() bool {
	return shapeKinds[strings.ToLower(n.XMLName.Local)]
}
