package epub

import (
	"fmt"
	"strings"
)

const dcNamespace = "http://purl.org/dc/elements/1.1/"

// ParsePackage reads and parses the package document at opfPath. Missing
// title or author and malformed manifest or spine items are recorded in rep
// and do not fail the parse.
func ParsePackage(a *Archive, opfPath string, rep *Report) (*PackageDocument, error) {
	data, err := a.ReadEntry(opfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPackage, err)
	}

	doc, err := ParseXML(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPackage, opfPath, err)
	}

	pkg := &PackageDocument{
		Path:        opfPath,
		Manifest:    make(map[string]ManifestItem),
		ByMediaType: make(map[string]ManifestItem),
	}

	scope := doc.Root()
	if md, ok := doc.First("metadata"); ok {
		scope = md
	}

	pkg.Title = dublinCore(scope, "title")
	if pkg.Title == "" {
		rep.Addf(StageMetadata, "no dc:title in %s", opfPath)
	}
	pkg.Author = dublinCore(scope, "creator")
	if pkg.Author == "" {
		rep.Addf(StageMetadata, "no dc:creator in %s", opfPath)
	}
	pkg.Language = dublinCore(scope, "language")
	pkg.Identifier = dublinCore(scope, "identifier")

	for _, m := range scope.Descendants("meta") {
		if name, _ := m.Attr("name"); name == "cover" {
			if content, ok := m.Attr("content"); ok && content != "" {
				pkg.CoverID = content
				break
			}
		}
	}

	parseManifest(doc, pkg, rep)
	parseSpine(doc, pkg, rep)
	parseGuide(doc, pkg)

	return pkg, nil
}

func parseManifest(doc *XMLDocument, pkg *PackageDocument, rep *Report) {
	for i, el := range doc.Elements("item") {
		id, hasID := el.Attr("id")
		href, hasHref := el.Attr("href")
		mediaType, hasType := el.Attr("media-type")
		if !hasID || !hasHref || !hasType {
			rep.Addf(StageManifest, "item %d (id %q) lacks id, href or media-type, skipped", i, id)
			continue
		}
		if _, dup := pkg.Manifest[id]; dup {
			rep.Addf(StageManifest, "duplicate manifest id %q, keeping first", id)
			continue
		}

		item := ManifestItem{
			ID:        id,
			Href:      href,
			MediaType: mediaType,
		}
		if props, ok := el.Attr("properties"); ok {
			item.Properties = strings.Fields(props)
		}

		pkg.Manifest[id] = item
		pkg.ManifestOrder = append(pkg.ManifestOrder, id)
		if _, seen := pkg.ByMediaType[mediaType]; !seen {
			pkg.ByMediaType[mediaType] = item
		}
	}
}

// parseSpine keeps an itemref without idref as an empty slot so that
// chapter indexes stay aligned with the document.
func parseSpine(doc *XMLDocument, pkg *PackageDocument, rep *Report) {
	for i, el := range doc.Elements("itemref") {
		idref, ok := el.Attr("idref")
		if !ok || idref == "" {
			rep.Addf(StageManifest, "spine itemref %d has no idref", i)
		}
		pkg.Spine = append(pkg.Spine, idref)
	}
}

func parseGuide(doc *XMLDocument, pkg *PackageDocument) {
	guide, ok := doc.First("guide")
	if !ok {
		return
	}
	for _, el := range guide.Children("reference") {
		typ, _ := el.Attr("type")
		href, _ := el.Attr("href")
		if href == "" {
			continue
		}
		title, _ := el.Attr("title")
		pkg.Guide = append(pkg.Guide, GuideReference{Type: typ, Title: title, Href: href})
	}
}

// dublinCore returns the text of the first Dublin Core element with the given
// local name. Elements in the DC namespace win; otherwise the first element
// with a matching local name is used since some producers omit the namespace.
func dublinCore(scope Element, local string) string {
	candidates := scope.Descendants(local)
	for _, el := range candidates {
		if el.Namespace() == dcNamespace {
			return el.Text()
		}
	}
	if len(candidates) > 0 {
		return candidates[0].Text()
	}
	return ""
}
