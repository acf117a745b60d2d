package roster

import (
	"slices"
	"strings"
)

// Kind classifies a node for the purposes of calendar parsing.
type Kind int

const (
	KindOther Kind = iota
	KindText
	KindHeading
	KindTable
	KindRow
	KindCell
)

// Node is a minimal document tree. It is deliberately independent of any
// HTML library; see internal/htmldoc for the goquery-backed loader.
type Node struct {
	Tag      string   // lower-case element name, empty for text nodes
	Classes  []string // class attribute tokens
	Data     string   // text content (text nodes only)
	Children []*Node
}

// Element creates an element node.
func Element(tag string, classes []string, children ...*Node) *Node {
	return &Node{Tag: strings.ToLower(tag), Classes: classes, Children: children}
}

// TextNode creates a text node.
func TextNode(s string) *Node {
	return &Node{Data: s}
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n.Tag == ""
}

// Kind returns the parsing role of n.
func (n *Node) Kind() Kind {
	switch n.Tag {
	case "":
		return KindText
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return KindHeading
	case "table":
		return KindTable
	case "tr":
		return KindRow
	case "td", "th":
		return KindCell
	default:
		return KindOther
	}
}

// HasClass reports whether the element carries the given class.
func (n *Node) HasClass(class string) bool {
	return slices.Contains(n.Classes, class)
}

// Text returns the concatenation of every descendant text fragment, each
// trimmed of surrounding whitespace, with empty fragments dropped.
func (n *Node) Text() string {
	var sb strings.Builder
	n.Walk(func(c *Node) {
		if !c.IsText() {
			return
		}
		if s := strings.TrimSpace(c.Data); s != "" {
			sb.WriteString(s)
		}
	})
	return sb.String()
}

// Walk visits n and all of its descendants in document (pre-)order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Elements returns every element in the subtree rooted at n, n included,
// as a flat pre-order list.
func (n *Node) Elements() []*Node {
	var out []*Node
	n.Walk(func(c *Node) {
		if !c.IsText() {
			out = append(out, c)
		}
	})
	return out
}

// Find returns the first descendant of n (excluding n) for which match
// returns true, or nil.
func (n *Node) Find(match func(*Node) bool) *Node {
	for _, c := range n.Children {
		if c.IsText() {
			continue
		}
		if match(c) {
			return c
		}
		if found := c.Find(match); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant of n (excluding n) for which match
// returns true, in document order.
func (n *Node) FindAll(match func(*Node) bool) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.IsText() {
			continue
		}
		if match(c) {
			out = append(out, c)
		}
		out = append(out, c.FindAll(match)...)
	}
	return out
}

// OfKind returns a matcher for nodes of the given kind.
func OfKind(k Kind) func(*Node) bool {
	return func(n *Node) bool { return n.Kind() == k }
}
