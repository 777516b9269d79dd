// Package xml wraps xmlquery to give the metadata compiler a small queryable
// tree: parse once, then run XPath expressions relative to any node.
//
// External entities are never fetched; xmlquery parses through encoding/xml,
// which does not resolve them.
package xml

import (
	"bytes"
	"fmt"
	"io"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Document represents a parsed XML document.
type Document struct {
	root *xmlquery.Node
}

// Node represents an XML element node.
type Node struct {
	node *xmlquery.Node
}

// Parse parses XML data and returns a Document.
func Parse(data []byte) (*Document, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader parses XML from r and returns a Document.
func ParseReader(r io.Reader) (*Document, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return &Document{root: root}, nil
}

// XPath executes an XPath query against the whole document.
func (d *Document) XPath(expr string) ([]*Node, error) {
	if d == nil || d.root == nil {
		return nil, nil
	}
	return queryAll(d.root, expr)
}

// XPathFirst executes an XPath query and returns the first matching node, or
// nil when nothing matches.
func (d *Document) XPathFirst(expr string) (*Node, error) {
	if d == nil || d.root == nil {
		return nil, nil
	}
	return queryFirst(d.root, expr)
}

func queryAll(from *xmlquery.Node, expr string) ([]*Node, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	nodes := xmlquery.QuerySelectorAll(from, compiled)
	result := make([]*Node, len(nodes))
	for i, n := range nodes {
		result[i] = &Node{node: n}
	}
	return result, nil
}

func queryFirst(from *xmlquery.Node, expr string) (*Node, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	n := xmlquery.QuerySelector(from, compiled)
	if n == nil {
		return nil, nil
	}
	return &Node{node: n}, nil
}

// XPath executes an XPath query relative to n.
func (n *Node) XPath(expr string) ([]*Node, error) {
	if n == nil || n.node == nil {
		return nil, nil
	}
	return queryAll(n.node, expr)
}

// XPathFirst executes an XPath query relative to n and returns the first match.
func (n *Node) XPathFirst(expr string) (*Node, error) {
	if n == nil || n.node == nil {
		return nil, nil
	}
	return queryFirst(n.node, expr)
}

// Texts returns the text content of every node matching expr relative to n,
// in document order.
func (n *Node) Texts(expr string) ([]string, error) {
	nodes, err := n.XPath(expr)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(nodes))
	for i, m := range nodes {
		texts[i] = m.Text()
	}
	return texts, nil
}

// Name returns the element name.
func (n *Node) Name() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.Data
}

// Text returns the text content of the node and its descendants.
func (n *Node) Text() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.InnerText()
}

// Attr returns the value of a specific attribute, or "" when absent.
func (n *Node) Attr(name string) string {
	v, _ := n.LookupAttr(name)
	return v
}

// LookupAttr returns the value of a specific attribute and whether it is
// present, so an empty attribute can be told apart from a missing one.
func (n *Node) LookupAttr(name string) (string, bool) {
	if n == nil || n.node == nil {
		return "", false
	}
	for _, attr := range n.node.Attr {
		if attr.Name.Local == name {
			return attr.Value, true
		}
	}
	return "", false
}
