package cleaner

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// skipped elements never contribute visible text.
var skipped = map[atom.Atom]struct{}{
	atom.Script:   {},
	atom.Style:    {},
	atom.Noscript: {},
	atom.Template: {},
	atom.Head:     {},
}

// blocks start a new line in rendered text.
var blocks = map[atom.Atom]struct{}{
	atom.Address: {}, atom.Article: {}, atom.Aside: {}, atom.Blockquote: {},
	atom.Br: {}, atom.Dd: {}, atom.Div: {}, atom.Dl: {}, atom.Dt: {},
	atom.Fieldset: {}, atom.Figcaption: {}, atom.Figure: {}, atom.Footer: {},
	atom.Form: {}, atom.H1: {}, atom.H2: {}, atom.H3: {}, atom.H4: {},
	atom.H5: {}, atom.H6: {}, atom.Header: {}, atom.Hr: {}, atom.Li: {},
	atom.Main: {}, atom.Nav: {}, atom.Ol: {}, atom.P: {}, atom.Pre: {},
	atom.Section: {}, atom.Table: {}, atom.Tr: {}, atom.Ul: {},
}

// VisibleText approximates what a browser's innerText returns for n:
// script and style content is dropped, block elements break lines, and
// runs of whitespace inside a line collapse to one space. Empty lines are
// removed.
func VisibleText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var buf strings.Builder
	walkText(n, &buf)
	return normalizeLines(buf.String())
}

func walkText(n *html.Node, buf *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		// Source line breaks are layout-insignificant; only block
		// boundaries break lines.
		buf.WriteString(strings.Map(spaceOnly, n.Data))
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if _, skip := skipped[n.DataAtom]; skip {
			return
		}
	}

	_, block := blocks[n.DataAtom]
	if block {
		buf.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, buf)
	}
	if block {
		buf.WriteByte('\n')
	}
}

func spaceOnly(r rune) rune {
	if unicode.IsSpace(r) {
		return ' '
	}
	return r
}

func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if collapsed := strings.Join(strings.Fields(line), " "); collapsed != "" {
			out = append(out, collapsed)
		}
	}
	return strings.Join(out, "\n")
}
