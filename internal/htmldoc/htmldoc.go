// Package htmldoc loads HTML into the library-independent roster.Node tree.
package htmldoc

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jmylchreest/dutyroster/pkg/roster"
)

// Load parses an HTML document and converts it to a roster.Node tree.
// Script, style and noscript content is dropped.
func Load(r io.Reader) (*roster.Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return FromDocument(doc), nil
}

// LoadString is Load for an in-memory document.
func LoadString(s string) (*roster.Node, error) {
	return Load(strings.NewReader(s))
}

// FromDocument converts an already parsed goquery document.
func FromDocument(doc *goquery.Document) *roster.Node {
	doc.Find("script, style, noscript, template").Remove()

	root := &roster.Node{Tag: "#document"}
	for _, n := range doc.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if converted := convert(c); converted != nil {
				root.Children = append(root.Children, converted)
			}
		}
	}
	return root
}

// convert maps an html.Node subtree onto roster.Node. Comments, doctypes
// and other non-content nodes return nil.
func convert(n *html.Node) *roster.Node {
	switch n.Type {
	case html.TextNode:
		return roster.TextNode(n.Data)
	case html.ElementNode:
		el := roster.Element(n.Data, classes(n))
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if converted := convert(c); converted != nil {
				el.Children = append(el.Children, converted)
			}
		}
		return el
	default:
		return nil
	}
}

func classes(n *html.Node) []string {
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == "class" {
			return strings.Fields(attr.Val)
		}
	}
	return nil
}
