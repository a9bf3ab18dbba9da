package epub

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Content is a parsed XHTML content document.
type Content struct {
	Path     string
	Document *goquery.Document
}

// selfClosingRawTagRe matches XHTML self-closed elements whose content the
// HTML parser would otherwise treat as raw text up to the end of the file.
var selfClosingRawTagRe = regexp.MustCompile(`(?is)<(script|style|title|textarea|iframe|noscript)\b([^>]*?)/>`)

// LoadContent decodes and parses an XHTML content document. The bytes are
// read as UTF-8 unless a byte order mark says otherwise.
func LoadContent(path string, data []byte) (*Content, error) {
	data = selfClosingRawTagRe.ReplaceAll(data, []byte(`<$1$2></$1>`))

	decoder := xunicode.BOMOverride(xunicode.UTF8.NewDecoder())
	doc, err := goquery.NewDocumentFromReader(transform.NewReader(bytes.NewReader(data), decoder))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XHTML %s: %w", path, err)
	}

	return &Content{Path: path, Document: doc}, nil
}

// BodyHTML returns the inner HTML of the body element.
func (c *Content) BodyHTML() (string, error) {
	body := c.Document.Find("body")
	if body.Length() == 0 {
		return goquery.OuterHtml(c.Document.Selection)
	}
	return body.Html()
}

// Text returns the visible text of the document. Markup, scripts, styles and
// the document head are dropped. Each block element starts a new line and
// whitespace inside a line collapses to single spaces.
func (c *Content) Text() string {
	w := &textWriter{}
	for _, n := range c.Document.Selection.Nodes {
		w.walk(n)
	}
	w.flush()
	return strings.Join(w.lines, "\n")
}

// skippedElements have no visible text.
var skippedElements = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Template: true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Math:     true,
}

// blockElements end the current line before and after their content.
var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Body: true, atom.Caption: true, atom.Dd: true, atom.Div: true, atom.Dl: true,
	atom.Dt: true, atom.Figcaption: true, atom.Figure: true, atom.Footer: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true,
	atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true, atom.Table: true,
	atom.Tr: true, atom.Ul: true,
}

// cellElements are separated by a space but stay on one line.
var cellElements = map[atom.Atom]bool{
	atom.Td: true,
	atom.Th: true,
}

type textWriter struct {
	lines    []string
	cur      strings.Builder
	space    bool
	preDepth int
}

func (w *textWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if w.preDepth > 0 {
			w.writePre(n.Data)
		} else {
			w.write(n.Data)
		}
		return
	case html.ElementNode:
		if skippedElements[n.DataAtom] {
			return
		}
		if n.DataAtom == atom.Br {
			w.flush()
			return
		}
	case html.DocumentNode:
	default:
		return
	}

	block := blockElements[n.DataAtom]
	if block {
		w.flush()
	}
	if cellElements[n.DataAtom] {
		w.space = true
	}
	if n.DataAtom == atom.Pre {
		w.preDepth++
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}

	if n.DataAtom == atom.Pre {
		w.preDepth--
	}
	if block {
		w.flush()
	}
	if cellElements[n.DataAtom] {
		w.space = true
	}
}

// write appends s with whitespace runs collapsed. Whitespace at either edge
// of s separates it from neighbouring text.
func (w *textWriter) write(s string) {
	if s == "" {
		return
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		w.space = true
		return
	}
	if r, _ := utf8.DecodeRuneInString(s); unicode.IsSpace(r) {
		w.space = true
	}
	for i, word := range words {
		if i > 0 {
			w.space = true
		}
		if w.space && w.cur.Len() > 0 {
			w.cur.WriteByte(' ')
		}
		w.cur.WriteString(word)
		w.space = false
	}
	if r, _ := utf8.DecodeLastRuneInString(s); unicode.IsSpace(r) {
		w.space = true
	}
}

// writePre keeps the line structure of preformatted text.
func (w *textWriter) writePre(s string) {
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			w.flush()
		}
		w.write(line)
	}
}

func (w *textWriter) flush() {
	if w.cur.Len() > 0 {
		w.lines = append(w.lines, w.cur.String())
		w.cur.Reset()
	}
	w.space = false
}
