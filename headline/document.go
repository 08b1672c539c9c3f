// Package headline mines a (name, title, company) triple from the
// metadata of a public profile page.
//
// Profile pages expose the same headline in several inconsistently
// populated places: OpenGraph tags, Twitter card tags, description
// metadata, embedded JSON-LD Person objects, and the document title.
// The extractor walks an ordered fallback chain over those sources and
// merges partial results until the triple is resolved or the chain is
// exhausted.
package headline

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document exposes the fixed set of metadata locations the extractor
// consults. Accessors are pure lookups; all fallback logic lives in the
// extractor.
type Document interface {
	// MetaContent returns the content attribute of the first meta tag
	// whose property or name attribute equals key, or "".
	MetaContent(key string) string
	// StructuredBlocks returns the raw payloads of all
	// application/ld+json script blocks in document order.
	StructuredBlocks() []string
	// TitleText returns the text of the first <title> element, or "".
	TitleText() string
}

type parsedDoc struct {
	meta   map[string]string
	blocks []string
	title  string
}

// Parse builds a Document from raw HTML. The html parser never fails on
// malformed markup, so an error here means the input could not be read
// at all.
func Parse(rawHTML []byte) (Document, error) {
	root, err := html.Parse(bytes.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	d := &parsedDoc{meta: make(map[string]string)}
	d.walk(root)
	return d, nil
}

func (d *parsedDoc) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Meta:
			key, content := metaAttrs(n)
			// First occurrence wins, matching a top-down tag search.
			if key != "" && content != "" {
				if _, seen := d.meta[key]; !seen {
					d.meta[key] = content
				}
			}
		case atom.Script:
			if scriptType(n) == "application/ld+json" {
				if text := nodeText(n); text != "" {
					d.blocks = append(d.blocks, text)
				}
			}
		case atom.Title:
			if d.title == "" {
				d.title = strings.TrimSpace(nodeText(n))
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.walk(c)
	}
}

func (d *parsedDoc) MetaContent(key string) string {
	return d.meta[key]
}

func (d *parsedDoc) StructuredBlocks() []string {
	return d.blocks
}

func (d *parsedDoc) TitleText() string {
	return d.title
}

// metaAttrs returns the property (or name) attribute and the content
// attribute of a meta tag.
func metaAttrs(n *html.Node) (key, content string) {
	var property, name string
	for _, a := range n.Attr {
		switch a.Key {
		case "property":
			property = a.Val
		case "name":
			name = a.Val
		case "content":
			content = a.Val
		}
	}
	if property != "" {
		return property, content
	}
	return name, content
}

func scriptType(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == "type" {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// nodeText concatenates the direct text children of a node.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}
