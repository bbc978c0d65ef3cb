package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/shelfscan/cleaner"
)

// Selector is a precompiled CSS selector.
type Selector struct {
	raw string
	m   cascadia.Selector
}

// ParseSelector compiles a CSS selector.
func ParseSelector(css string) (Selector, error) {
	m, err := cascadia.Compile(css)
	if err != nil {
		return Selector{}, fmt.Errorf("compile selector %q: %w", css, err)
	}
	return Selector{raw: css, m: m}, nil
}

// MustSelector is like ParseSelector but panics on an invalid selector.
// It is meant for package-level selector tables.
func MustSelector(css string) Selector {
	s, err := ParseSelector(css)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Selector) String() string { return s.raw }

// Document is read-only access to a rendered page.
type Document interface {
	// URL is the page's final address; relative attributes resolve against it.
	URL() string

	// Query returns the first element matching sel in document order.
	Query(sel Selector) (Node, bool)

	// QueryAll returns every element matching sel in document order.
	QueryAll(sel Selector) []Node
}

// Node is one element of a Document.
type Node interface {
	Query(sel Selector) (Node, bool)
	QueryAll(sel Selector) []Node

	// Text returns the element's visible text with whitespace normalized.
	Text() string

	// Attr returns the raw attribute value and whether it is present.
	Attr(name string) (string, bool)

	// HTML returns the element's outer HTML.
	HTML() (string, error)
}

// NewDocument parses a rendered page snapshot.
func NewDocument(page *RenderedPage) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("parse rendered page: %w", err)
	}
	return &gqDocument{url: page.URL, root: doc.Selection}, nil
}

type gqDocument struct {
	url  string
	root *goquery.Selection
}

func (d *gqDocument) URL() string { return d.url }

func (d *gqDocument) Query(sel Selector) (Node, bool) { return query(d.root, sel) }

func (d *gqDocument) QueryAll(sel Selector) []Node { return queryAll(d.root, sel) }

type gqNode struct {
	sel *goquery.Selection
}

func (n gqNode) Query(sel Selector) (Node, bool) { return query(n.sel, sel) }

func (n gqNode) QueryAll(sel Selector) []Node { return queryAll(n.sel, sel) }

func (n gqNode) Text() string { return cleaner.VisibleText(n.sel.Get(0)) }

func (n gqNode) Attr(name string) (string, bool) { return n.sel.Attr(name) }

func (n gqNode) HTML() (string, error) { return goquery.OuterHtml(n.sel) }

func query(from *goquery.Selection, sel Selector) (Node, bool) {
	found := from.FindMatcher(sel.m).First()
	if found.Length() == 0 {
		return nil, false
	}
	return gqNode{sel: found}, true
}

func queryAll(from *goquery.Selection, sel Selector) []Node {
	found := from.FindMatcher(sel.m)
	nodes := make([]Node, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, gqNode{sel: s})
	})
	return nodes
}
