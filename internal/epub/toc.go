package epub

import (
	"fmt"
	"strings"
)

// LabelPairing selects how a navPoint finds its navLabel.
type LabelPairing int

const (
	// PairStructural uses the navLabel nested in the navPoint itself.
	PairStructural LabelPairing = iota
	// PairPositional pairs the i-th navPoint with the i-th navLabel of the
	// whole document. This is only correct when every navPoint carries
	// exactly one label and labels never nest.
	PairPositional
)

func (p LabelPairing) String() string {
	switch p {
	case PairPositional:
		return "positional"
	default:
		return "structural"
	}
}

// ParseLabelPairing parses "structural" or "positional". An empty string
// selects the structural pairing.
func ParseLabelPairing(s string) (LabelPairing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "structural":
		return PairStructural, nil
	case "positional":
		return PairPositional, nil
	default:
		return PairStructural, fmt.Errorf("unknown label pairing %q", s)
	}
}

// ResolveToc locates the NCX document through the manifest and returns its
// navigation points in document order. A missing or unreadable NCX is not an
// error: the anomaly goes to rep and the result is an empty, non-nil slice.
func ResolveToc(a *Archive, pkg *PackageDocument, pairing LabelPairing, rep *Report) []TocEntry {
	toc := []TocEntry{}

	item, ok := pkg.ByMediaType[NCXMediaType]
	if !ok {
		rep.Addf(StageToc, "no %s item in manifest", NCXMediaType)
		return toc
	}

	tocPath, data, err := readResolved(a, pkg.Path, item.Href)
	if err != nil {
		rep.Add(StageToc, err)
		return toc
	}

	doc, err := ParseXML(data)
	if err != nil {
		rep.Add(StageToc, fmt.Errorf("%s: %w", tocPath, err))
		return toc
	}

	navPoints := doc.Elements("navPoint")
	var labels []Element
	if pairing == PairPositional {
		labels = doc.Elements("navLabel")
		if len(labels) != len(navPoints) {
			rep.Addf(StageToc, "%d navPoints but %d navLabels, positional titles may be misaligned",
				len(navPoints), len(labels))
		}
	}

	for i, np := range navPoints {
		entry := TocEntry{Order: i}

		switch pairing {
		case PairPositional:
			if i < len(labels) {
				entry.Title = labels[i].Text()
			}
			if c, ok := np.FirstDescendant("content"); ok {
				entry.ContentSrc, _ = c.Attr("src")
			}
		default:
			entry.Title = ownChild(np, "navLabel").Text()
			entry.ContentSrc, _ = ownChild(np, "content").Attr("src")
		}

		p, fragment := splitFragment(entry.ContentSrc)
		if p != "" {
			entry.Path = ResolvePath(tocPath, p)
		}
		entry.Fragment = fragment

		toc = append(toc, entry)
	}

	return toc
}

// ownChild returns the direct child with the given local name, falling back to
// the first wrapped descendant. Nested navPoints are never searched, so an
// unlabelled parent does not take its child's title.
func ownChild(el Element, local string) Element {
	if c := el.Children(local); len(c) > 0 {
		return c[0]
	}
	if d, ok := el.FirstDescendantOutside(local, "navPoint"); ok {
		return d
	}
	return Element{}
}
