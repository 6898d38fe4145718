// Package adapters picks the part of an HTML page that holds the document
// text, so navigation and footers do not turn into paragraphs.
package adapters

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/lawlens/internal/extract"
)

// Adapter narrows one family of pages to their content.
type Adapter interface {
	Name() string

	// CanHandle reports whether the adapter knows pages like url.
	CanHandle(url string, contentType string) bool

	// ContentRoot returns the node holding the document body proper.
	ContentRoot(doc *html.Node) *html.Node
}

// Registry resolves a source to an adapter. Registered adapters are tried in
// order; the generic adapter takes everything else.
type Registry struct {
	adapters []Adapter
	fallback Adapter
}

func NewRegistry() *Registry {
	return &Registry{
		adapters: []Adapter{NewLegalAdapter()},
		fallback: NewGenericAdapter(),
	}
}

// Register adds an adapter ahead of the fallback.
func (r *Registry) Register(a Adapter) {
	r.adapters = append(r.adapters, a)
}

func (r *Registry) FindAdapter(url string, contentType string) Adapter {
	for _, a := range r.adapters {
		if a.CanHandle(url, contentType) {
			return a
		}
	}
	return r.fallback
}

// ToText returns the visible text under the content root chosen for url and
// the name of the adapter that chose it.
func (r *Registry) ToText(page, url, contentType string) (text, adapter string, err error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", "", fmt.Errorf("parse HTML: %w", err)
	}
	a := r.FindAdapter(url, contentType)
	root := a.ContentRoot(doc)
	if root == nil {
		root = doc
	}
	return extract.VisibleText(root), a.Name(), nil
}

func isElement(n *html.Node, tags ...string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if n.Data == t {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// findFirst walks the tree depth-first and returns the first node match accepts.
func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

// bodyOf returns <body>, or doc for fragments without one.
func bodyOf(doc *html.Node) *html.Node {
	if body := findFirst(doc, func(n *html.Node) bool { return isElement(n, "body") }); body != nil {
		return body
	}
	return doc
}
