package epub

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// Element is a read-only view of one XML element. Tag names are matched by
// local name so that producers may use any namespace prefix. The zero Element
// stands for a missing element: it has no name, text, attributes or children.
type Element struct {
	e *etree.Element
}

// XMLDocument is a parsed XML document. Each parse builds its own tree and
// nothing is shared between documents.
type XMLDocument struct {
	root Element
}

// ParseXML parses data into a navigable tree. Declared non-UTF-8 encodings
// are honoured and HTML named entities, common in OPF and NCX files, are
// accepted.
func ParseXML(data []byte) (*XMLDocument, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		Entity:        xml.HTMLEntity,
	}
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrXMLParse, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrXMLParse)
	}
	return &XMLDocument{root: Element{root}}, nil
}

// Root returns the document element.
func (d *XMLDocument) Root() Element {
	return d.root
}

// Elements returns every element with the given local name, including the
// root, in document order.
func (d *XMLDocument) Elements(local string) []Element {
	var out []Element
	if d.root.e.Tag == local {
		out = append(out, d.root)
	}
	return append(out, d.root.Descendants(local)...)
}

// First returns the first element in document order with the given local name.
func (d *XMLDocument) First(local string) (Element, bool) {
	if d.root.e.Tag == local {
		return d.root, true
	}
	return d.root.FirstDescendant(local)
}

// Name returns the local name of the element.
func (el Element) Name() string {
	if el.e == nil {
		return ""
	}
	return el.e.Tag
}

// Descendants returns all descendant elements (excluding el itself) whose
// local name is local, in document order.
func (el Element) Descendants(local string) []Element {
	var out []Element
	if el.e == nil {
		return nil
	}
	walkElements(el.e, func(c *etree.Element) bool {
		if c.Tag == local {
			out = append(out, Element{c})
		}
		return true
	})
	return out
}

// FirstDescendant returns the first descendant with the given local name.
func (el Element) FirstDescendant(local string) (Element, bool) {
	if el.e == nil {
		return Element{}, false
	}
	var found *etree.Element
	walkElements(el.e, func(c *etree.Element) bool {
		if c.Tag == local {
			found = c
			return false
		}
		return true
	})
	if found == nil {
		return Element{}, false
	}
	return Element{found}, true
}

// FirstDescendantOutside is FirstDescendant without entering descendants
// named boundary.
func (el Element) FirstDescendantOutside(local, boundary string) (Element, bool) {
	if el.e == nil {
		return Element{}, false
	}
	var found *etree.Element
	var visit func(*etree.Element) bool
	visit = func(e *etree.Element) bool {
		for _, c := range e.ChildElements() {
			if c.Tag == local {
				found = c
				return false
			}
			if c.Tag == boundary {
				continue
			}
			if !visit(c) {
				return false
			}
		}
		return true
	}
	visit(el.e)
	if found == nil {
		return Element{}, false
	}
	return Element{found}, true
}

// Children returns the direct child elements with the given local name.
func (el Element) Children(local string) []Element {
	var out []Element
	if el.e == nil {
		return nil
	}
	for _, c := range el.e.ChildElements() {
		if c.Tag == local {
			out = append(out, Element{c})
		}
	}
	return out
}

// Attr returns the value of the named attribute. The name may carry a
// namespace prefix; an unprefixed name matches the attribute in any namespace.
func (el Element) Attr(name string) (string, bool) {
	if el.e == nil {
		return "", false
	}
	a := el.e.SelectAttr(name)
	if a == nil {
		return "", false
	}
	return a.Value, true
}

// Text returns the concatenated character data of el and all its
// descendants, trimmed of surrounding whitespace.
func (el Element) Text() string {
	if el.e == nil {
		return ""
	}
	var b strings.Builder
	collectText(el.e, &b)
	return strings.TrimSpace(b.String())
}

func collectText(e *etree.Element, b *strings.Builder) {
	for _, tok := range e.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			b.WriteString(t.Data)
		case *etree.Element:
			collectText(t, b)
		}
	}
}

// walkElements visits the descendants of e in pre-order until fn returns false.
func walkElements(e *etree.Element, fn func(*etree.Element) bool) bool {
	for _, c := range e.ChildElements() {
		if !fn(c) {
			return false
		}
		if !walkElements(c, fn) {
			return false
		}
	}
	return true
}

// Namespace returns the resolved namespace URI of the element.
func (el Element) Namespace() string {
	if el.e == nil {
		return ""
	}
	return el.e.NamespaceURI()
}
